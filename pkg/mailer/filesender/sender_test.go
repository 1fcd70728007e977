package filesender

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

func TestSender_Send_WritesFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	s, err := New(Config{Dir: dir})
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	id, err := s.Send(context.Background(), &mailer.Email{
		To:       []string{"ops@example.com"},
		Subject:  "Low stock: Paper A4!",
		HTML:     "<p>Reorder</p>",
		Text:     "Reorder",
		Priority: mailer.PriorityHigh,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var jsonFile string
	for _, e := range entries {
		require.True(t, strings.HasPrefix(e.Name(), "2026_03_14_093000_"))
		require.Contains(t, e.Name(), "low_stock_paper_a4")
		if strings.HasSuffix(e.Name(), ".json") {
			jsonFile = filepath.Join(dir, e.Name())
		}
	}

	raw, err := os.ReadFile(jsonFile)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, id, env.MessageID)
	require.Equal(t, []string{"ops@example.com"}, env.To)
	require.Equal(t, mailer.PriorityHigh, env.Priority)
	require.Equal(t, "1 (Highest)", env.Headers["X-Priority"])
}

func TestSender_Send_CanceledContext(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Send(ctx, &mailer.Email{To: []string{"a@example.com"}, Subject: "x", HTML: "x"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresDir(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Dir: "  "})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "order_1042_confirmed", sanitizeFilename("Order #1042 confirmed"))
	require.Equal(t, "email", sanitizeFilename("!!!"))
	require.LessOrEqual(t, len(sanitizeFilename(strings.Repeat("a", 80))), 50)
}
