package pipeline

import (
	"context"
	"html"
	"regexp"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized to prevent injection attacks.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// h1Pattern matches the first level-one heading, attributes included.
var h1Pattern = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1>`)

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes HTML tags, decodes entities and collapses whitespace.
func stripHTMLTags(s string) string {
	text := html.UnescapeString(htmlTagPattern.ReplaceAllString(s, ""))
	return strings.Join(strings.Fields(text), " ")
}

// FirstHeading returns the plain text of the first <h1> in htmlContent,
// or "" when there is none.
func FirstHeading(htmlContent string) string {
	m := h1Pattern.FindStringSubmatch(htmlContent)
	if m == nil {
		return ""
	}
	return stripHTMLTags(m[1])
}
