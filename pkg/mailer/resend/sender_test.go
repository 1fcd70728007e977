package resend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(Config{SenderEmail: "shop@example.com"})
	require.ErrorIs(t, err, mailer.ErrInvalidConfig)

	s, err := New(Config{APIKey: "re_test", SenderEmail: "shop@example.com"})
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSender_BuildRequest(t *testing.T) {
	t.Parallel()

	s, err := New(Config{APIKey: "re_test", SenderEmail: "shop@example.com", SenderName: "Print Shop", ReplyTo: "help@example.com"})
	require.NoError(t, err)

	req := s.buildRequest(&mailer.Email{
		To:       []string{"ops@example.com"},
		Subject:  "Low stock",
		HTML:     "<p>x</p>",
		Text:     "x",
		Priority: mailer.PriorityHigh,
		Tags:     mailer.SimpleTags("stock_alert"),
		Attachments: []mailer.Attachment{
			{Filename: "report.csv", ContentType: "text/csv", Content: []byte("a,b")},
		},
	})

	require.Equal(t, "Print Shop <shop@example.com>", req.From)
	require.Equal(t, "help@example.com", req.ReplyTo)
	require.Equal(t, "1 (Highest)", req.Headers["X-Priority"])
	require.Len(t, req.Tags, 1)
	require.Equal(t, "true", req.Tags[0].Value)
	require.Len(t, req.Attachments, 1)
	require.Equal(t, "report.csv", req.Attachments[0].Filename)

	override := s.buildRequest(&mailer.Email{From: "other@example.com", ReplyTo: "sales@example.com"})
	require.Equal(t, "other@example.com", override.From)
	require.Equal(t, "sales@example.com", override.ReplyTo)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want mailer.ErrorKind
	}{
		{err: errors.New("[ERROR]: API key is invalid"), want: mailer.ErrorKindAuth},
		{err: errors.New("[ERROR]: Too many requests, rate limit exceeded"), want: mailer.ErrorKindConnectivity},
		{err: errors.New("[ERROR]: 422 validation_error: invalid `to` field"), want: mailer.ErrorKindRejected},
		{err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: mailer.ErrorKindTimeout},
		{err: errors.New("something odd"), want: mailer.ErrorKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, classify(tt.err))
		})
	}
}

type region string

func (r region) String() string { return "region:" + string(r) }

func TestTagValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "true", tagValue(struct{}{}))
	require.Equal(t, "true", tagValue(nil))
	require.Equal(t, "es", tagValue("es"))
	require.Equal(t, "false", tagValue(false))
	require.Equal(t, "42", tagValue(42))
	require.Equal(t, "7", tagValue(int64(7)))
	require.Equal(t, "1.5", tagValue(1.5))
	require.Equal(t, "region:eu", tagValue(region("eu")))
}
