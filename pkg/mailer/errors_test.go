package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ErrorKindNone},
		{name: "tagged", err: NewDeliveryError(ErrorKindAuth, errors.New("bad token")), want: ErrorKindAuth},
		{name: "tagged and wrapped", err: fmt.Errorf("resend: %w", NewDeliveryError(ErrorKindRejected, errors.New("422"))), want: ErrorKindRejected},
		{name: "deadline", err: fmt.Errorf("send: %w", context.DeadlineExceeded), want: ErrorKindTimeout},
		{name: "smtp auth", err: &textproto.Error{Code: 535, Msg: "authentication failed"}, want: ErrorKindAuth},
		{name: "smtp mailbox busy", err: &textproto.Error{Code: 450, Msg: "mailbox unavailable"}, want: ErrorKindConnectivity},
		{name: "smtp no such user", err: &textproto.Error{Code: 550, Msg: "no such user"}, want: ErrorKindRejected},
		{name: "net timeout", err: &net.OpError{Op: "dial", Err: timeoutErr{}}, want: ErrorKindTimeout},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "smtp.invalid"}, want: ErrorKindConnectivity},
		{name: "opaque", err: errors.New("boom"), want: ErrorKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorKind_Retryable(t *testing.T) {
	t.Parallel()

	require.True(t, ErrorKindConnectivity.Retryable())
	require.True(t, ErrorKindTimeout.Retryable())
	require.False(t, ErrorKindAuth.Retryable())
	require.False(t, ErrorKindRejected.Retryable())
	require.False(t, ErrorKindRender.Retryable())
	require.False(t, ErrorKindUnknown.Retryable())
}

func TestDeliveryError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewDeliveryError(ErrorKindConnectivity, cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "connectivity: connection reset", err.Error())
	require.NoError(t, NewDeliveryError(ErrorKindAuth, nil))
}
