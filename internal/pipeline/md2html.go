package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkOption configures a GoldmarkConverter.
type GoldmarkOption func(*goldmarkSettings)

type goldmarkSettings struct {
	rawHTML bool
	plain   bool
	title   string
}

// WithRawHTML passes HTML embedded in the markdown through to the output.
// Downloaded chapters and hand-written tables of contents both rely on it.
func WithRawHTML() GoldmarkOption {
	return func(s *goldmarkSettings) { s.rawHTML = true }
}

// WithPlainMarkdown disables GFM, footnotes and highlighting. Only links
// written by the author become anchors: bare URLs stay text and no footnote
// back-references are generated.
func WithPlainMarkdown() GoldmarkOption {
	return func(s *goldmarkSettings) { s.plain = true }
}

// WithTitle sets the <title> of generated documents.
func WithTitle(title string) GoldmarkOption {
	return func(s *goldmarkSettings) { s.title = title }
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md    goldmark.Markdown
	title string
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and syntax highlighting.
func NewGoldmarkConverter(opts ...GoldmarkOption) *GoldmarkConverter {
	settings := goldmarkSettings{title: "Chapter"}
	for _, opt := range opts {
		opt(&settings)
	}

	rendererOpts := []goldmark.Option{}
	if settings.rawHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}

	if settings.plain {
		return &GoldmarkConverter{md: goldmark.New(rendererOpts...), title: settings.title}
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles, the chapter page has no chroma stylesheet
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	}, rendererOpts...)...)

	return &GoldmarkConverter{md: md, title: settings.title}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, html.EscapeString(c.title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
