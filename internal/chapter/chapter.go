// Package chapter discovers the chapters of a book from a markdown table of
// contents and derives the names of every file produced for them.
package chapter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Chapter is one hyperlink of the table of contents.
// Order is the 1-based position among the links kept by the indexer.
type Chapter struct {
	Order int
	URL   string
	Title string
}

// String returns a short human-readable form for logs.
func (c Chapter) String() string {
	return fmt.Sprintf("%03d %s", c.Order, c.Title)
}

// SafeName keeps letters, digits, spaces, '-' and '_' and trims surrounding
// whitespace. Applying it twice yields the same result.
func SafeName(title string) string {
	return strings.TrimSpace(keep(title, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}))
}

// SafeImageName keeps letters, digits, '.', '-' and '_'.
func SafeImageName(name string) string {
	return strings.TrimSpace(keep(name, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	}))
}

// keep filters s down to letters, digits and the runes accepted by extra.
// Input is NFC-normalized first so composed and decomposed accents agree,
// and again after filtering: dropping a rune can leave neighbours that
// compose, such as two Hangul jamo.
func keep(s string, extra func(rune) bool) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || extra(r) {
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}

// HTMLFileName is the name of a downloaded chapter page: "007-Title.html".
func HTMLFileName(c Chapter) string {
	return fmt.Sprintf("%03d-%s.html", c.Order, SafeName(c.Title))
}

// MarkdownFileName is the name of a converted chapter: "007_Title.md".
func MarkdownFileName(c Chapter) string {
	return fmt.Sprintf("%03d_%s.md", c.Order, SafeName(c.Title))
}

// PDFFileName is the name of a rendered chapter: "007_Title.pdf".
func PDFFileName(c Chapter) string {
	return fmt.Sprintf("%03d_%s.pdf", c.Order, SafeName(c.Title))
}

// OutlineTitle returns the outline label for a chapter file: the file stem
// after its first '-'. Stems without a '-' are returned unchanged.
func OutlineTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, title, ok := strings.Cut(stem, "-"); ok {
		return title
	}
	return stem
}

// LeadingIndex parses the base-10 integer before the first '_' of a file
// stem. ok is false when the prefix is not a number.
func LeadingIndex(path string) (n int, ok bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix, _, _ := strings.Cut(stem, "_")
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return n, true
}
