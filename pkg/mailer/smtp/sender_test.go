package smtp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

func testSender(t *testing.T) *Sender {
	t.Helper()

	s, err := New(Config{
		Host:      "smtp.example.com",
		FromEmail: "shop@example.com",
		FromName:  "Print Shop",
		ReplyTo:   "help@example.com",
	})
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(Config{FromEmail: "shop@example.com"})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)

	_, err = New(Config{Host: "smtp.example.com"})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)

	s, err := New(Config{Host: "smtp.example.com", FromEmail: "shop@example.com"})
	require.NoError(t, err)
	require.Equal(t, 587, s.config.Port)
}

func TestSender_BuildMessage(t *testing.T) {
	t.Parallel()

	msg, err := testSender(t).buildMessage(&mailer.Email{
		To:       []string{"ops@example.com"},
		Subject:  "Low stock: Paper A4",
		HTML:     "<p>Reorder paper</p>",
		Text:     "Reorder paper",
		Priority: mailer.PriorityHigh,
		Headers:  map[string]string{"X-Notification-Kind": "stock_alert"},
		Attachments: []mailer.Attachment{
			{Filename: "stock.csv", ContentType: "text/csv", Content: []byte("sku,qty\nPAP-A4,3\n")},
		},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	require.Contains(t, raw, "Subject: Low stock: Paper A4")
	require.Contains(t, raw, `"Print Shop" <shop@example.com>`)
	require.Contains(t, raw, "Reply-To: <help@example.com>")
	require.Contains(t, raw, "X-Notification-Kind: stock_alert")
	require.Contains(t, raw, "Importance: High")
	require.Contains(t, raw, "text/plain")
	require.Contains(t, raw, "text/html")
	require.Contains(t, raw, "stock.csv")
	require.NotEmpty(t, msg.GetMessageID())
}

func TestSender_BuildMessage_InvalidAddress(t *testing.T) {
	t.Parallel()

	_, err := testSender(t).buildMessage(&mailer.Email{
		To:      []string{"not an address"},
		Subject: "x",
		HTML:    "<p>x</p>",
	})
	require.Error(t, err)
}

func TestSender_Send_InvalidAddressIsRejected(t *testing.T) {
	t.Parallel()

	_, err := testSender(t).Send(context.Background(), &mailer.Email{
		To:      []string{"not an address"},
		Subject: "x",
		HTML:    "<p>x</p>",
	})
	require.Equal(t, mailer.ErrorKindRejected, mailer.Classify(err))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	require.Equal(t, mailer.ErrorKindTimeout, classify(fmt.Errorf("dial: %w", context.DeadlineExceeded)))
	require.Equal(t, mailer.ErrorKindConnectivity, classify(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))
	require.Equal(t, mailer.ErrorKindUnknown, classify(errors.New("odd")))
}

func TestImportance(t *testing.T) {
	t.Parallel()

	require.NotEqual(t, importance(mailer.PriorityHigh), importance(mailer.PriorityNormal))
	require.NotEqual(t, importance(mailer.PriorityLow), importance(mailer.PriorityNormal))
	require.Equal(t, importance(""), importance(mailer.PriorityNormal))
}
