// Package pdfmerge folds chapter PDFs into one book with an outline and
// document metadata.
package pdfmerge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/multierr"
)

// Sentinel errors for merge operations.
var (
	ErrMerge         = errors.New("PDF merge failed")
	ErrNoChapterPDFs = errors.New("no PDFs to combine")
	ErrFinished      = errors.New("assembler already finished")
)

// Metadata is written into the document information dictionary.
type Metadata struct {
	Creator  string
	Producer string
	Created  time.Time
	Modified time.Time
}

// properties renders m as information dictionary entries.
func (m Metadata) properties() map[string]string {
	props := map[string]string{}
	if m.Creator != "" {
		props["Creator"] = m.Creator
	}
	if m.Producer != "" {
		props["Producer"] = m.Producer
	}
	if !m.Created.IsZero() {
		props["CreationDate"] = PDFDate(m.Created)
	}
	if !m.Modified.IsZero() {
		props["ModDate"] = PDFDate(m.Modified)
	}
	return props
}

// PDFDate formats t as a PDF date string: D:YYYYMMDDHHmmSS+HH'mm'.
func PDFDate(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	if offset == 0 {
		return "D:" + t.Format("20060102150405") + "Z"
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, (offset%3600)/60)
}

// OutlineEntry is one bookmark of the merged document.
type OutlineEntry struct {
	Title string
	Page  int // 1-based first page
	Pages int
}

// Assembler appends chapter PDFs one at a time into a staging file next to
// the output and moves it into place on Finish.
type Assembler struct {
	out     string
	staging string
	conf    *model.Configuration
	pages   int
	outline []OutlineEntry
	done    bool
}

// NewAssembler prepares an assembler writing to out.
func NewAssembler(out string) *Assembler {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Assembler{
		out:     out,
		staging: out + ".partial",
		conf:    conf,
	}
}

// Append folds the PDF at path into the book and records an outline entry
// for its first page.
func (a *Assembler) Append(path, title string) error {
	if a.done {
		return ErrFinished
	}

	n, err := api.PageCountFile(path)
	if err != nil {
		return fmt.Errorf("%w: counting pages of %s: %v", ErrMerge, filepath.Base(path), err)
	}

	if len(a.outline) == 0 {
		err = copyFile(path, a.staging)
	} else {
		err = api.MergeAppendFile([]string{path}, a.staging, false, a.conf)
	}
	if err != nil {
		return fmt.Errorf("%w: appending %s: %v", ErrMerge, filepath.Base(path), err)
	}

	if title == "" {
		title = "Chapter " + strconv.Itoa(len(a.outline)+1)
	}
	a.outline = append(a.outline, OutlineEntry{Title: title, Page: a.pages + 1, Pages: n})
	a.pages += n
	return nil
}

// Outline returns the entries recorded so far.
func (a *Assembler) Outline() []OutlineEntry {
	return append([]OutlineEntry(nil), a.outline...)
}

// Pages returns the number of pages folded so far. After Finish on an
// empty book it is 1, the blank page.
func (a *Assembler) Pages() int {
	return a.pages
}

// Finish writes the outline and metadata and moves the book to its output
// path. With nothing appended it writes a single blank page instead.
func (a *Assembler) Finish(meta Metadata) error {
	if a.done {
		return ErrFinished
	}
	a.done = true

	if len(a.outline) == 0 {
		if err := WriteBlank(a.out, meta); err != nil {
			return err
		}
		a.pages = 1
		return nil
	}

	bookmarks := make([]pdfcpu.Bookmark, 0, len(a.outline))
	for _, e := range a.outline {
		bookmarks = append(bookmarks, pdfcpu.Bookmark{
			Title:    e.Title,
			PageFrom: e.Page,
			PageThru: e.Page + e.Pages - 1,
		})
	}

	if err := api.AddBookmarksFile(a.staging, "", bookmarks, true, a.conf); err != nil {
		return multierr.Append(fmt.Errorf("%w: writing outline: %v", ErrMerge, err), a.removeStaging())
	}
	// Metadata goes last: any later pdfcpu write would restamp it.
	if err := patchInfo(a.staging, meta.properties()); err != nil {
		return multierr.Append(fmt.Errorf("%w: writing metadata: %v", ErrMerge, err), a.removeStaging())
	}
	if err := os.Rename(a.staging, a.out); err != nil {
		return multierr.Append(fmt.Errorf("%w: %v", ErrMerge, err), a.removeStaging())
	}
	return nil
}

// Abort discards the staging file.
func (a *Assembler) Abort() error {
	a.done = true
	return a.removeStaging()
}

func (a *Assembler) removeStaging() error {
	if err := os.Remove(a.staging); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// copyFile copies src to dst, truncating dst.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- chapter PDF produced by this run
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) // #nosec G304 -- staging path derived from the output path
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}
