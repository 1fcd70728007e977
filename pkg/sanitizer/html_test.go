package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips script injection", input: `<p>Hello</p><script>alert('xss')</script>`, expected: "Hello"},
		{name: "strips all tags", input: `<p>Order <strong>#1042</strong> shipped</p>`, expected: "Order #1042 shipped"},
		{name: "strips event handlers", input: `<img src="x" onerror="alert('xss')">`, expected: ""},
		{name: "keeps link text", input: `<a href="javascript:alert('xss')">click</a>`, expected: "click"},
		{name: "unescapes entities", input: `Paper &amp; ink`, expected: "Paper & ink"},
		{name: "collapses whitespace", input: "<p>a</p>\n\n  <p>b</p>", expected: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	in := `<html><body><h1>Order shipped</h1><p>Your order   <b>#1042</b> is on its way.</p><ul><li>Flyers A5</li><li>Posters A2</li></ul><p>Tracking &amp; more<br>Thanks</p></body></html>`
	out := sanitizer.HTMLToText(in)

	assert.Equal(t, "Order shipped\nYour order #1042 is on its way.\nFlyers A5\nPosters A2\nTracking & more\nThanks", out)
	assert.Empty(t, sanitizer.HTMLToText(""))
}
