package mailer

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func composerFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Content}}</body></html>`),
		},
		"order.md": &fstest.MapFile{
			Data: []byte("---\nSubject: Order {{.Number}} confirmed\n---\nThanks, **{{.Name}}**!\n"),
		},
		"plain.md": &fstest.MapFile{
			Data: []byte("Hello {{.Name}}\n"),
		},
		"badsubject.md": &fstest.MapFile{
			Data: []byte("---\nSubject: \"{{.Broken\"\n---\nHi\n"),
		},
	}
}

func newTestComposer() *Composer {
	return NewComposer(NewRenderer(composerFS()), Config{FallbackSubject: "Print Shop update"})
}

func TestComposer_Compose(t *testing.T) {
	t.Parallel()

	email, err := newTestComposer().Compose(ComposeParams{
		To:       []string{" ana@example.com ", ""},
		Template: "order.md",
		Data:     map[string]string{"Name": "Ana", "Number": "1042"},
		Priority: PriorityHigh,
		ReplyTo:  "shop@example.com",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"ana@example.com"}, email.To)
	require.Equal(t, "Order 1042 confirmed", email.Subject)
	require.Contains(t, email.HTML, "<strong>Ana</strong>")
	require.Contains(t, email.Text, "Thanks, **Ana**!")
	require.Equal(t, PriorityHigh, email.Priority)
	require.Equal(t, "shop@example.com", email.ReplyTo)
}

func TestComposer_Compose_SubjectResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		subject  string
		want     string
	}{
		{name: "explicit wins", template: "order.md", subject: "Custom for {{.Name}}", want: "Custom for Ana"},
		{name: "frontmatter", template: "order.md", want: "Order 7 confirmed"},
		{name: "fallback", template: "plain.md", want: "Print Shop update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email, err := newTestComposer().Compose(ComposeParams{
				To:       []string{"ana@example.com"},
				Template: tt.template,
				Subject:  tt.subject,
				Data:     map[string]string{"Name": "Ana", "Number": "7"},
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, email.Subject)
		})
	}
}

func TestComposer_Compose_Errors(t *testing.T) {
	t.Parallel()

	c := newTestComposer()

	_, err := c.Compose(ComposeParams{Template: "order.md"})
	require.ErrorIs(t, err, ErrNoRecipient)

	_, err = c.Compose(ComposeParams{To: []string{"a@example.com"}, Template: "missing.md"})
	require.ErrorIs(t, err, ErrRenderFailed)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = c.Compose(ComposeParams{To: []string{"a@example.com"}, Template: "badsubject.md"})
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestComposer_Compose_DefaultsPriority(t *testing.T) {
	t.Parallel()

	email, err := newTestComposer().Compose(ComposeParams{
		To:       []string{"a@example.com"},
		Template: "plain.md",
		Priority: Priority("urgent"),
	})
	require.NoError(t, err)
	require.Equal(t, PriorityNormal, email.Priority)
}

func TestComposer_Finalize(t *testing.T) {
	t.Parallel()

	c := newTestComposer()

	email, err := c.Finalize(&Email{
		To:      []string{"a@example.com"},
		Subject: "Hello",
		HTML:    "<p>Line one</p><p>Line &amp; two</p>",
	})
	require.NoError(t, err)
	require.Equal(t, "Line one\nLine & two", email.Text)
	require.Equal(t, PriorityNormal, email.Priority)

	_, err = c.Finalize(&Email{Subject: "x", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, ErrNoRecipient)

	_, err = c.Finalize(&Email{To: []string{"a@example.com"}, HTML: "<p>x</p>"})
	require.ErrorIs(t, err, ErrNoSubject)

	_, err = c.Finalize(&Email{To: []string{"a@example.com"}, Subject: "x"})
	require.ErrorIs(t, err, ErrNoContent)
}
