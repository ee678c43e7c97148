package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joker/jade"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Engine names.
const (
	EnginePug      = "pug"
	EngineMarkdown = "markdown"
	EngineGoTmpl   = "gotmpl"
)

var engineByExt = map[string]string{
	".pug":      EnginePug,
	".jade":     EnginePug,
	".md":       EngineMarkdown,
	".markdown": EngineMarkdown,
	".tmpl":     EngineGoTmpl,
	".gohtml":   EngineGoTmpl,
}

// EngineFor returns the engine name for path, or "" when no engine handles it.
func EngineFor(path string) string {
	return engineByExt[strings.ToLower(filepath.Ext(path))]
}

// IsPartial reports whether path names a partial.
func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "_")
}

const markdownLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
</head>
<body>
{{ .Content }}
</body>
</html>
`

// Renderer renders page files to HTML.
type Renderer struct {
	partialRoot string
	md          goldmark.Markdown
	layout      *template.Template
}

// New creates a renderer. Go template partials are looked up below partialRoot;
// an empty root uses each page's own directory.
func New(partialRoot string) *Renderer {
	return &Renderer{
		partialRoot: partialRoot,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		layout: template.Must(template.New("layout").Parse(markdownLayout)),
	}
}

// RenderFile renders the page at path.
func (r *Renderer) RenderFile(path string) ([]byte, error) {
	engine := EngineFor(path)
	if engine == "" {
		return nil, fmt.Errorf("%s: no template engine for extension %q", path, filepath.Ext(path))
	}
	if engine == EnginePug {
		// jade resolves includes relative to the file itself
		return r.renderPug(path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch engine {
	case EngineMarkdown:
		return r.renderMarkdown(path, data, body)
	default:
		return r.renderGoTemplate(path, data, body)
	}
}

func (r *Renderer) renderPug(path string) ([]byte, error) {
	code, err := jade.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	name := filepath.Base(path)
	tpl, err := template.New(name).Option("missingkey=zero").Parse(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]any{}); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderMarkdown(path string, data map[string]any, body []byte) ([]byte, error) {
	var content bytes.Buffer
	if err := r.md.Convert(body, &content); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	title, _ := data["title"].(string)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var buf bytes.Buffer
	err := r.layout.Execute(&buf, map[string]any{
		"Title":   title,
		"Content": template.HTML(content.String()), //nolint:gosec // goldmark drops raw HTML unless WithUnsafe is set.
		"Params":  data,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderGoTemplate(path string, data map[string]any, body []byte) ([]byte, error) {
	tpl, err := template.New(filepath.Base(path)).Option("missingkey=zero").Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	partials, err := r.partials(path)
	if err != nil {
		return nil, err
	}
	for _, p := range partials {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if _, err := tpl.New(filepath.Base(p)).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// partials lists the Go template partials visible to the page at path, sorted.
func (r *Renderer) partials(path string) ([]string, error) {
	root := r.partialRoot
	if root == "" {
		root = filepath.Dir(path)
	}
	pattern := filepath.ToSlash(filepath.Join(root, "**", "_*.{tmpl,gohtml}"))
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("partials in %s: %w", root, err)
	}
	return matches, nil
}
