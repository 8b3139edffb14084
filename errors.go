package book2pdf

import (
	"errors"

	"github.com/alnah/go-book2pdf/internal/chapter"
	"github.com/alnah/go-book2pdf/internal/fetch"
	"github.com/alnah/go-book2pdf/internal/pdfmerge"
)

// Sentinel errors for library operations.
var (
	ErrReadMarkdown     = errors.New("failed to read chapter list")
	ErrEmptyChapterList = chapter.ErrEmptyChapterList
	ErrOutputDir        = errors.New("failed to prepare output directory")

	// Fetch errors.
	ErrFetch      = fetch.ErrRequest
	ErrHTTPStatus = fetch.ErrStatus
	ErrWriteFile  = errors.New("failed to write chapter file")

	// Render errors.
	ErrRender         = errors.New("chapter rendering failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFMissing     = errors.New("rendered PDF not found")

	// Merge errors.
	ErrMerge         = pdfmerge.ErrMerge
	ErrNoChapterPDFs = pdfmerge.ErrNoChapterPDFs
)
