// Package mailer builds and sends transactional email.
//
// It separates message composition from delivery so providers can be swapped
// without touching templates.
//
//   - Renderer turns markdown templates with YAML frontmatter into HTML and text.
//   - Composer combines a Renderer with defaults to produce an *Email.
//   - Sender is implemented by providers: smtp, resend, postmark and filesender.
//
// # Templates
//
// Templates are markdown files with optional YAML frontmatter:
//
//	---
//	Subject: Order {{.Data.Number}} confirmed
//	Preheader: Thanks for your order
//	---
//
//	Hello {{.Data.CustomerName}},
//
//	[!button|Track your order]({{.Data.TrackingURL}})
//
// The subject is itself a template. Buttons accept an optional variant,
// for example [!button:danger|Stop](url), rendered as class="btn btn-danger".
// The plain-text body is the executed markdown with buttons flattened to
// "Label: URL".
//
// # Errors
//
// Providers wrap failures with NewDeliveryError so callers can tell auth,
// rejected, connectivity and timeout problems apart via Classify. Only
// connectivity and timeout are considered retryable.
package mailer
