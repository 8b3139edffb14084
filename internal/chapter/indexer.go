package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-book2pdf/internal/pipeline"
)

// ErrEmptyChapterList is returned when filtering leaves no chapter links.
var ErrEmptyChapterList = errors.New("no chapters found in markdown file")

// LinkFilter reports whether a link destination is a chapter.
type LinkFilter func(href string) bool

// AllLinks keeps every link with a destination.
func AllLinks(string) bool { return true }

// ChapterPages keeps destinations ending in ".html", containing "index.html",
// or containing domain.
func ChapterPages(domain string) LinkFilter {
	return func(href string) bool {
		if strings.HasSuffix(href, ".html") || strings.Contains(href, "index.html") {
			return true
		}
		return domain != "" && strings.Contains(href, domain)
	}
}

// Indexer extracts chapters from a markdown table of contents.
type Indexer struct {
	html pipeline.HTMLConverter
}

// NewIndexer creates an Indexer. Raw HTML anchors in the markdown are
// rendered so they are discovered alongside markdown links. Autolinked
// URLs and footnote references are not links of the table of contents.
func NewIndexer() *Indexer {
	return &Indexer{html: pipeline.NewGoldmarkConverter(pipeline.WithRawHTML(), pipeline.WithPlainMarkdown())}
}

// Index renders markdown and returns one Chapter per anchor whose href is
// non-empty and accepted by keep, numbered from 1 in document order.
// An empty result is not an error.
func (ix *Indexer) Index(ctx context.Context, markdown string, keep LinkFilter) ([]Chapter, error) {
	if keep == nil {
		keep = AllLinks
	}

	htmlContent, err := ix.html.ToHTML(ctx, markdown)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered markdown: %w", err)
	}

	var chapters []Chapter
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" || !keep(href) {
			return
		}
		chapters = append(chapters, Chapter{
			Order: len(chapters) + 1,
			URL:   href,
			Title: strings.TrimSpace(s.Text()),
		})
	})
	return chapters, nil
}

// IndexPages is Index with the ChapterPages filter. It fails with
// ErrEmptyChapterList when no link qualifies.
func (ix *Indexer) IndexPages(ctx context.Context, markdown, domain string) ([]Chapter, error) {
	chapters, err := ix.Index(ctx, markdown, ChapterPages(domain))
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, ErrEmptyChapterList
	}
	return chapters, nil
}
