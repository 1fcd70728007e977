package notify

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/mailer"
)

//go:embed templates
var embedded embed.FS

// Templates returns the built-in notification templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Resolver renders a request into a ready-to-send email. It has no side effects.
type Resolver interface {
	Resolve(req Request) (*mailer.Email, error)
}

// renderContext is the data passed to templates as the dot value.
type renderContext struct {
	Kind Kind
	Data Payload
	Now  time.Time
}

// TemplateResolver renders <kind>.md templates through the base layout.
type TemplateResolver struct {
	renderer *mailer.Renderer
	composer *mailer.Composer
	now      func() time.Time
}

// NewTemplateResolver builds a resolver over the embedded templates, or the
// FS given with WithTemplates. Reads WithLocale, WithBrand, WithClock and
// WithFallbackSubject.
func NewTemplateResolver(opts ...Option) *TemplateResolver {
	o := buildOptions(opts)

	templates := o.templates
	if templates == nil {
		templates = Templates()
	}

	renderer := mailer.NewRendererWithConfig(templates, mailer.RendererConfig{
		Funcs:   templateFuncs(o.locale),
		Globals: map[string]any{"Brand": o.brand},
	})

	return &TemplateResolver{
		renderer: renderer,
		composer: mailer.NewComposer(renderer, mailer.Config{
			FallbackSubject: o.fallbackSubject,
			DefaultLayout:   "base.html",
		}),
		now: o.now,
	}
}

// Resolve renders req. Unknown kinds, and kinds without a template file,
// fail with ErrTemplateNotFound. Missing payload fields render empty.
func (r *TemplateResolver) Resolve(req Request) (*mailer.Email, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, req.Kind)
	}
	name := string(req.Kind) + ".md"
	if !r.renderer.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	payload := req.Payload
	if payload == nil {
		payload = zeroPayload(req.Kind)
	}
	if payload.Kind() != req.Kind {
		return nil, fmt.Errorf("%w: %s payload for %s", ErrPayloadMismatch, payload.Kind(), req.Kind)
	}

	headers := map[string]string{"X-Notification-Kind": string(req.Kind)}
	if req.ID != "" {
		headers["X-Notification-ID"] = req.ID
	}

	email, err := r.composer.Compose(mailer.ComposeParams{
		To:          req.Recipients,
		Template:    name,
		Data:        renderContext{Kind: req.Kind, Data: payload, Now: r.now()},
		Priority:    req.Priority,
		Headers:     headers,
		Tags:        mailer.SimpleTags(string(req.Kind)),
		Attachments: req.Attachments,
	})
	if err != nil {
		if errors.Is(err, mailer.ErrNoRecipient) {
			return nil, ErrNoRecipients
		}
		return nil, errors.Join(ErrRenderFailed, err)
	}

	// Caller subjects are used verbatim, never executed as templates.
	if req.Subject != "" {
		email.Subject = req.Subject
	}

	return email, nil
}

// Preview renders req without requiring recipients.
func (r *TemplateResolver) Preview(req Request) (*mailer.Email, error) {
	if len(cleanRecipients(req.Recipients)) == 0 {
		req.Recipients = []string{"preview@example.invalid"}
	}
	return r.Resolve(req)
}
