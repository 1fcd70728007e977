package mailer

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ButtonNode represents a call-to-action link in the AST.
// Syntax: [!button|Label](URL) or [!button:variant|Label](URL).
type ButtonNode struct {
	ast.BaseInline
	URL     []byte
	Label   []byte
	Variant []byte
}

func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":     string(n.URL),
		"Variant": string(n.Variant),
	}, nil)
}

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

const buttonPrefix = "[!button"

var buttonTextPattern = regexp.MustCompile(`\[!button(?::[a-z]+)?\|([^\]]*)\]\(([^)\s]*)\)`)

// ButtonsToText flattens button syntax into "Label: URL" for plain-text bodies.
func ButtonsToText(markdown string) string {
	return buttonTextPattern.ReplaceAllString(markdown, "$1: $2")
}

type buttonParser struct{}

// NewButtonParser creates a new button inline parser.
func NewButtonParser() parser.InlineParser {
	return &buttonParser{}
}

func (s *buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (s *buttonParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(buttonPrefix)) {
		return nil
	}

	pos := len(buttonPrefix)
	var variant []byte
	if pos < len(line) && line[pos] == ':' {
		start := pos + 1
		end := start
		for end < len(line) && line[end] >= 'a' && line[end] <= 'z' {
			end++
		}
		if end == start {
			return nil
		}
		variant = line[start:end]
		pos = end
	}
	if pos >= len(line) || line[pos] != '|' {
		return nil
	}
	pos++

	labelEnd := bytes.IndexByte(line[pos:], ']')
	if labelEnd == -1 {
		return nil
	}
	label := line[pos : pos+labelEnd]
	pos += labelEnd + 1

	if pos >= len(line) || line[pos] != '(' {
		return nil
	}
	pos++

	urlEnd := bytes.IndexByte(line[pos:], ')')
	if urlEnd == -1 {
		return nil
	}
	url := line[pos : pos+urlEnd]

	block.Advance(pos + urlEnd + 1)

	return &ButtonNode{URL: url, Label: label, Variant: variant}
}

type buttonRenderer struct {
	html.Config
}

// NewButtonRenderer creates a new button node renderer.
func NewButtonRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &buttonRenderer{Config: html.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.renderButton)
}

func (r *buttonRenderer) renderButton(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ButtonNode)

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(n.URL))
	_, _ = w.WriteString(`" class="btn`)
	if len(n.Variant) > 0 {
		_, _ = w.WriteString(` btn-`)
		_, _ = w.Write(n.Variant)
	}
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)

	return ast.WalkContinue, nil
}

// ButtonExtension is a goldmark extension for button links.
type ButtonExtension struct{}

func (e *ButtonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewButtonParser(), 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewButtonRenderer(), 50),
	))
}

// NewButtonExtension creates a new button extension for goldmark.
func NewButtonExtension() goldmark.Extender {
	return &ButtonExtension{}
}
