package pdfmerge

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// WriteBlank writes a one-page A4 document carrying meta and no outline.
func WriteBlank(path string, meta Metadata) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if meta.Creator != "" {
		pdf.SetCreator(meta.Creator, true)
	}
	if meta.Producer != "" {
		pdf.SetProducer(meta.Producer, true)
	}
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
	}
	if !meta.Modified.IsZero() {
		pdf.SetModificationDate(meta.Modified)
	}
	pdf.AddPage()

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: writing empty book: %v", ErrMerge, err)
	}
	return nil
}
