package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"dispatch"}, args...))
	return out.String(), err
}

func TestKinds(t *testing.T) {
	out, err := run(t, "kinds")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 12)
	assert.Contains(t, lines, "welcome")
	assert.Contains(t, lines, "stock_alert")
}

func TestPreview(t *testing.T) {
	out, err := run(t, "preview", "--kind", "welcome", "--data", `{"name":"Ana"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Subject: Welcome to the shop, Ana\n"), out)
	assert.Contains(t, out, "<html")
}

func TestPreview_Text(t *testing.T) {
	out, err := run(t, "preview", "--kind", "welcome", "--data", `{"name":"Ana"}`, "--text")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ana!")
	assert.NotContains(t, out, "<html")
}

func TestPreview_UnknownKind(t *testing.T) {
	_, err := run(t, "preview", "--kind", "fax")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestSend_RequiresRecipient(t *testing.T) {
	_, err := run(t, "send", "--kind", "welcome")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestReadData(t *testing.T) {
	t.Parallel()

	t.Run("inline", func(t *testing.T) {
		t.Parallel()
		raw, err := readData(` {"name":"Ana"} `)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ana"}`, string(raw))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		raw, err := readData("")
		require.NoError(t, err)
		assert.Equal(t, "{}", string(raw))
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name":"Bo"}`), 0o600))
		raw, err := readData("@" + path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Bo"}`, string(raw))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := readData("{name")
		require.Error(t, err)
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, exitCode(cli.Exit("boom", 3)))
	assert.Equal(t, 1, exitCode(assert.AnError))
}
