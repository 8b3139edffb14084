package pipeline

import (
	"context"
	"errors"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ErrMarkdownConversion indicates HTML to markdown conversion failed.
var ErrMarkdownConversion = errors.New("markdown conversion failed")

// MarkdownConverter abstracts HTML to Markdown conversion.
type MarkdownConverter interface {
	ToMarkdown(ctx context.Context, htmlContent string) (string, error)
}

// HTMLToMarkdown converts whole pages with html-to-markdown. Links and images
// are kept with their sources untouched and lines are never wrapped.
type HTMLToMarkdown struct{}

// ToMarkdown converts htmlContent to markdown.
func (c *HTMLToMarkdown) ToMarkdown(ctx context.Context, htmlContent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdownConversion, err)
	}
	return md, nil
}
