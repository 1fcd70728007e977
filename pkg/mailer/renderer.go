package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FuncMap is the set of helper functions available to templates and layouts.
type FuncMap map[string]any

// Renderer converts markdown templates with YAML frontmatter to HTML.
// Parsed templates and layouts are cached; rendered output never is.
type Renderer struct {
	fs      fs.FS
	md      goldmark.Markdown
	funcs   FuncMap
	globals map[string]any

	templateCache map[string]*cachedTemplate
	layoutCache   map[string]*template.Template
	templateDir   string
	layoutDir     string

	mu sync.RWMutex
}

type cachedTemplate struct {
	parsed *Template
	tmpl   *texttemplate.Template
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	TemplateDir string         // Default: "."
	LayoutDir   string         // Default: "layouts"
	Funcs       FuncMap        // Extra helpers for templates and layouts
	Globals     map[string]any // Exposed to layouts as .Globals
}

// NewRenderer creates a new renderer with default config.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a new renderer with custom config.
func NewRendererWithConfig(filesystem fs.FS, cfg RendererConfig) *Renderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}
	if cfg.Funcs == nil {
		cfg.Funcs = FuncMap{}
	}
	if cfg.Globals == nil {
		cfg.Globals = map[string]any{}
	}

	return &Renderer{
		fs:            filesystem,
		funcs:         cfg.Funcs,
		globals:       cfg.Globals,
		templateDir:   cfg.TemplateDir,
		layoutDir:     cfg.LayoutDir,
		md:            goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough, NewButtonExtension())),
		templateCache: make(map[string]*cachedTemplate),
		layoutCache:   make(map[string]*template.Template),
	}
}

// RenderResult contains the rendered HTML, plain text, and extracted metadata.
type RenderResult struct {
	Metadata map[string]any
	Subject  string // Raw frontmatter subject, not yet executed
	HTML     string
	Text     string // Processed markdown with buttons flattened to "Label: URL" and escapes removed
}

// Render executes a markdown template with data and wraps it in layout.
func (r *Renderer) Render(layout, templateName string, data any) (*RenderResult, error) {
	cached, err := r.getTemplate(templateName)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := cached.tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, templateName, err)
	}

	var body bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("%w: convert markdown: %v", ErrRenderFailed, err)
	}

	layoutTmpl, err := r.getLayout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	layoutData := map[string]any{
		"Content":  template.HTML(body.String()),
		"Metadata": cached.parsed.Metadata,
		"Globals":  r.globals,
	}
	if err := layoutTmpl.Execute(&out, layoutData); err != nil {
		return nil, fmt.Errorf("%w: execute layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{
		Metadata: cached.parsed.Metadata,
		Subject:  cached.parsed.Subject(),
		HTML:     out.String(),
		Text:     strings.TrimSpace(UnescapeMarkdown(ButtonsToText(markdown.String()))) + "\n",
	}, nil
}

// ExecuteString runs an inline text template (such as a subject line) with
// the renderer's helper functions.
func (r *Renderer) ExecuteString(name, text string, data any) (string, error) {
	tmpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(r.funcs)).Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}
	return buf.String(), nil
}

// Has reports whether a template file exists.
func (r *Renderer) Has(templateName string) bool {
	r.mu.RLock()
	_, ok := r.templateCache[templateName]
	r.mu.RUnlock()
	if ok {
		return true
	}
	_, err := fs.Stat(r.fs, path.Join(r.templateDir, templateName))
	return err == nil
}

// Templates lists the markdown template files available to the renderer.
func (r *Renderer) Templates() ([]string, error) {
	entries, err := fs.ReadDir(r.fs, r.templateDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *Renderer) getTemplate(name string) (*cachedTemplate, error) {
	r.mu.RLock()
	if cached, ok := r.templateCache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.templateCache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := texttemplate.New(name).
		Funcs(texttemplate.FuncMap(r.funcs)).
		Option("missingkey=zero").
		Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}

	cached := &cachedTemplate{parsed: parsed, tmpl: tmpl}
	r.templateCache[name] = cached
	return cached, nil
}

func (r *Renderer) getLayout(name string) (*template.Template, error) {
	r.mu.RLock()
	if cached, ok := r.layoutCache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layoutCache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	layoutTmpl, err := template.New(name).Funcs(template.FuncMap(r.funcs)).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
	}

	r.layoutCache[name] = layoutTmpl
	return layoutTmpl, nil
}
