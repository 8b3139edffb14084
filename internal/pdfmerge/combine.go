package pdfmerge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/maruel/natural"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/alnah/go-book2pdf/internal/chapter"
)

var leadingIndex = chapter.LeadingIndex

// SortByLeadingIndex orders chapter PDF paths by the number before the first
// '_' of their file name. Unnumbered names sort after numbered ones; ties
// fall back to natural name order.
func SortByLeadingIndex(paths []string) []string {
	sorted := append([]string(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, oki := leadingIndex(sorted[i])
		nj, okj := leadingIndex(sorted[j])
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return oki
		}
		return natural.Less(filepath.Base(sorted[i]), filepath.Base(sorted[j]))
	})
	return sorted
}

// Probe opens the PDF at path and returns its page count.
func Probe(path string) (pages int, err error) {
	defer func() {
		// The reader panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

// Combine sorts paths by leading index, drops those that cannot be opened
// (logging each) and concatenates the rest into out. It returns the paths
// actually merged, in order.
func Combine(paths []string, out string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(paths) == 0 {
		return nil, ErrNoChapterPDFs
	}

	var readable []string
	for _, p := range SortByLeadingIndex(paths) {
		if _, err := Probe(p); err != nil {
			logger.Warn("Skipping unreadable PDF", zap.String("path", p), zap.Error(err))
			continue
		}
		readable = append(readable, p)
	}
	if len(readable) == 0 {
		return nil, ErrNoChapterPDFs
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMerge, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.MergeCreateFile(readable, out, false, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return readable, nil
}
