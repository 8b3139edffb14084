package book2pdf

import (
	"github.com/alnah/go-book2pdf/internal/chapter"
)

// Chapter is one table-of-contents link: 1-based order, destination URL and title.
type Chapter = chapter.Chapter

// ChapterResult is the outcome of one chapter in one stage. Path is the
// file produced for it, empty when Err is set.
type ChapterResult struct {
	Chapter Chapter
	Path    string
	Err     error
}

// Assembly is the outcome of printing and merging the chapter files of an
// output directory.
type Assembly struct {
	// Pages is the page count of the merged PDF.
	Pages int
	// Failed maps each chapter file that could not be printed or merged to
	// its error.
	Failed map[string]error
}

// BuildReport summarizes a book build.
type BuildReport struct {
	// Chapters holds one result per discovered chapter, in book order.
	Chapters []ChapterResult
	// Output is the merged PDF path, empty if none was written.
	Output string
	// Manifest is the path of the per-chapter manifest, if written.
	Manifest string
	// Pages is the page count of the merged PDF when known.
	Pages int
}

// Succeeded returns the number of chapters without error.
func (r *BuildReport) Succeeded() int {
	n := 0
	for _, c := range r.Chapters {
		if c.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of chapters with an error.
func (r *BuildReport) Failed() int {
	return len(r.Chapters) - r.Succeeded()
}
