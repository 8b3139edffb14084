package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		opts         []GoldmarkOption
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "heading and paragraph",
			input:        "# Title\n\nBody text",
			wantContains: []string{"<h1", "Title</h1>", "<p>Body text</p>", "<!DOCTYPE html>", `<meta charset="utf-8">`},
		},
		{
			name:         "GFM table",
			input:        "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:         "fenced code is highlighted inline",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{"<pre", "style="},
		},
		{
			name:         "raw HTML dropped by default",
			input:        `<a href="x.html">X</a>`,
			wantExcludes: []string{`href="x.html"`},
		},
		{
			name:         "raw HTML kept when enabled",
			opts:         []GoldmarkOption{WithRawHTML()},
			input:        `<a href="x.html">X</a>`,
			wantContains: []string{`<a href="x.html">X</a>`},
		},
		{
			name:         "plain markdown leaves bare URLs and footnotes alone",
			opts:         []GoldmarkOption{WithPlainMarkdown()},
			input:        "See https://aosabook.org/en/ and [Bash](bash.html)[^1].\n\n[^1]: note",
			wantContains: []string{`<a href="bash.html">Bash</a>`},
			wantExcludes: []string{`href="https://aosabook.org/en/"`, "#fn", "<table>"},
		},
		{
			name:         "title escaped",
			opts:         []GoldmarkOption{WithTitle("A & B")},
			input:        "text",
			wantContains: []string{"<title>A &amp; B</title>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewGoldmarkConverter(tt.opts...).ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot: %s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("output should not contain %q\ngot: %s", exclude, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoldmarkConverter().ToHTML(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestChapterPreprocessor(t *testing.T) {
	t.Parallel()

	p := &ChapterPreprocessor{}
	got := p.PreprocessMarkdown(context.Background(), "\n\nline1\r\nline2\r\n\r\n\r\n\r\nline3")
	want := "line1\nline2\n\nline3"
	if got != want {
		t.Errorf("PreprocessMarkdown() = %q, want %q", got, want)
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	t.Parallel()

	longLine := strings.Repeat("word ", 60)
	page := `<html><body><h1>Chapter</h1><p>` + longLine + `</p>` +
		`<p><a href="next.html">Next</a></p><img src="../images/fig.png" alt="Figure"></body></html>`

	got, err := (&HTMLToMarkdown{}).ToMarkdown(context.Background(), page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"# Chapter", "[Next](next.html)", "![Figure](../images/fig.png)"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q\ngot: %s", want, got)
		}
	}
	if !strings.Contains(got, strings.TrimSpace(longLine)) {
		t.Error("long paragraph should not be wrapped")
	}
}

func TestHTMLToMarkdown_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&HTMLToMarkdown{}).ToMarkdown(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
