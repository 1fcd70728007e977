package mailer

import "context"

// Sender defines the minimal interface that email providers must implement.
// It accepts a fully-prepared Email and handles the actual delivery.
type Sender interface {
	// Send delivers an email message and returns the provider-assigned message ID.
	// The Email must have To, Subject, and HTML already set.
	// Providers should wrap failures with NewDeliveryError when they know the cause.
	Send(ctx context.Context, email *Email) (string, error)
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(ctx context.Context, email *Email) (string, error)

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, email *Email) (string, error) {
	return f(ctx, email)
}
