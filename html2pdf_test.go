package book2pdf

// Notes:
// - Browser-backed rendering is exercised in html2pdf_integration_test.go.
//   These tests cover the print presets and the DevTools parameter mapping.

import (
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

// ---------------------------------------------------------------------------
// TestPrintOptions - Presets
// ---------------------------------------------------------------------------

func TestPrintOptionPresets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       *PrintOptions
		wantMargin float64
		wantHeader string
		wantMedia  bool
		wantCSS    bool
	}{
		{
			name:       "chapter pages use 20mm and a header",
			opts:       ChapterPrintOptions("Audacity"),
			wantMargin: 0.7874,
			wantHeader: "Audacity",
		},
		{
			name:       "markdown chapters use 0.75in and print media",
			opts:       MarkdownPrintOptions(),
			wantMargin: 0.75,
			wantMedia:  true,
		},
		{
			name:       "fallback uses 2cm and honors @page",
			opts:       FallbackPrintOptions(),
			wantMargin: 0.7874,
			wantCSS:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !approx(tt.opts.PaperWidth, 8.27) || !approx(tt.opts.PaperHeight, 11.69) {
				t.Errorf("paper = %vx%v, want A4", tt.opts.PaperWidth, tt.opts.PaperHeight)
			}
			if !approx(tt.opts.Margin, tt.wantMargin) {
				t.Errorf("Margin = %v, want %v", tt.opts.Margin, tt.wantMargin)
			}
			if tt.opts.HeaderTitle != tt.wantHeader {
				t.Errorf("HeaderTitle = %q, want %q", tt.opts.HeaderTitle, tt.wantHeader)
			}
			if tt.opts.PrintMedia != tt.wantMedia {
				t.Errorf("PrintMedia = %v, want %v", tt.opts.PrintMedia, tt.wantMedia)
			}
			if tt.opts.PreferCSSPageSize != tt.wantCSS {
				t.Errorf("PreferCSSPageSize = %v, want %v", tt.opts.PreferCSSPageSize, tt.wantCSS)
			}
			if tt.opts.PrintBackground {
				t.Error("backgrounds must not be printed")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRodPrintParams - DevTools Mapping
// ---------------------------------------------------------------------------

func TestRodPrintParams(t *testing.T) {
	t.Parallel()

	t.Run("margins on all sides and unit scale", func(t *testing.T) {
		t.Parallel()

		p := rodPrintParams(MarkdownPrintOptions())
		for name, v := range map[string]*float64{
			"top": p.MarginTop, "bottom": p.MarginBottom, "left": p.MarginLeft, "right": p.MarginRight,
		} {
			if v == nil || !approx(*v, 0.75) {
				t.Errorf("margin %s = %v, want 0.75", name, v)
			}
		}
		if p.Scale == nil || *p.Scale != 1 {
			t.Errorf("Scale = %v, want 1", p.Scale)
		}
		if p.DisplayHeaderFooter {
			t.Error("no header expected without a title")
		}
	})

	t.Run("header template escapes the title", func(t *testing.T) {
		t.Parallel()

		p := rodPrintParams(ChapterPrintOptions("Bash & <Friends>"))
		if !p.DisplayHeaderFooter {
			t.Fatal("header must be displayed")
		}
		if !strings.Contains(p.HeaderTemplate, "Bash &amp; &lt;Friends&gt;") {
			t.Errorf("HeaderTemplate = %q", p.HeaderTemplate)
		}
		if strings.Contains(p.FooterTemplate, "pageNumber") {
			t.Error("footer must stay empty")
		}
	})
}

func TestNoSandbox(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "plain environment", env: map[string]string{"CI": "", "ROD_BROWSER_BIN": "", "ROD_NO_SANDBOX": ""}, want: false},
		{name: "CI", env: map[string]string{"CI": "true", "ROD_BROWSER_BIN": "", "ROD_NO_SANDBOX": ""}, want: true},
		{name: "pre-installed browser", env: map[string]string{"CI": "", "ROD_BROWSER_BIN": "/usr/bin/chromium", "ROD_NO_SANDBOX": ""}, want: true},
		{name: "explicit opt-out", env: map[string]string{"CI": "", "ROD_BROWSER_BIN": "", "ROD_NO_SANDBOX": "1"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := noSandbox(); got != tt.want {
				t.Errorf("noSandbox() = %v, want %v", got, tt.want)
			}
		})
	}
}
