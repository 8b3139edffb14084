package pdfmerge

// Notes:
// - Real PDFs are produced with gofpdf so pdfcpu and the reader see valid input
// - Merged metadata is read back with both ledongthuc/pdf and pdfcpu, which
//   resolve the appended information dictionary independently

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// writeTestPDF writes a PDF with the given number of pages, each carrying label.
func writeTestPDF(t *testing.T, path string, pages int, label string) {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 14)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Cell(40, 10, label)
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing test PDF: %v", err)
	}
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("PageCountFile(%s): %v", path, err)
	}
	return n
}

// ---------------------------------------------------------------------------
// TestAssembler - Fold, Outline, Metadata
// ---------------------------------------------------------------------------

func TestAssembler_AppendFinish(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a1 := filepath.Join(dir, "a.pdf")
	a2 := filepath.Join(dir, "b.pdf")
	a3 := filepath.Join(dir, "c.pdf")
	writeTestPDF(t, a1, 2, "one")
	writeTestPDF(t, a2, 1, "two")
	writeTestPDF(t, a3, 3, "three")

	out := filepath.Join(dir, "book.pdf")
	asm := NewAssembler(out)
	for i, p := range []string{a1, a2, a3} {
		if err := asm.Append(p, []string{"Intro", "", "Last"}[i]); err != nil {
			t.Fatalf("Append(%s): %v", p, err)
		}
	}

	want := []OutlineEntry{
		{Title: "Intro", Page: 1, Pages: 2},
		{Title: "Chapter 2", Page: 3, Pages: 1},
		{Title: "Last", Page: 4, Pages: 3},
	}
	got := asm.Outline()
	if len(got) != len(want) {
		t.Fatalf("outline = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("outline[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	created := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	if err := asm.Finish(Metadata{Creator: "HTML2PDF Converter", Producer: "go-book2pdf with headless Chrome", Created: created, Modified: created}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if n := pageCount(t, out); n != 6 {
		t.Errorf("merged pages = %d, want 6", n)
	}
	if _, err := os.Stat(out + ".partial"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("staging file left behind: %v", err)
	}

	f, r, err := pdf.Open(out)
	if err != nil {
		t.Fatalf("opening merged PDF: %v", err)
	}
	defer f.Close()
	info := r.Trailer().Key("Info")
	for key, want := range map[string]string{
		"Creator":      "HTML2PDF Converter",
		"Producer":     "go-book2pdf with headless Chrome",
		"CreationDate": "D:20240309083000Z",
		"ModDate":      "D:20240309083000Z",
	} {
		if got := info.Key(key).RawString(); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}

	ctx, err := api.ReadContextFile(out)
	if err != nil {
		t.Fatalf("ReadContextFile: %v", err)
	}
	if ctx.Info == nil {
		t.Fatal("merged PDF has no information dictionary")
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		t.Fatalf("DereferenceDict: %v", err)
	}
	if p := d.StringEntry("Producer"); p == nil || *p != "go-book2pdf with headless Chrome" {
		t.Errorf("pdfcpu Producer = %v", p)
	}

	if err := asm.Append(a1, "again"); !errors.Is(err, ErrFinished) {
		t.Errorf("Append after Finish = %v, want ErrFinished", err)
	}
}

func TestAssembler_Empty(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "empty.pdf")
	asm := NewAssembler(out)
	if err := asm.Finish(Metadata{Creator: "c", Created: time.Now()}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if n := pageCount(t, out); n != 1 {
		t.Errorf("empty book pages = %d, want 1", n)
	}
	if len(asm.Outline()) != 0 {
		t.Error("empty book must have no outline entries")
	}
	if asm.Pages() != 1 {
		t.Errorf("Pages() = %d, want 1 for the blank page", asm.Pages())
	}
}

func TestAssembler_AppendInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pdf")
	if err := os.WriteFile(bad, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	asm := NewAssembler(filepath.Join(dir, "out.pdf"))
	if err := asm.Append(bad, "Bad"); !errors.Is(err, ErrMerge) {
		t.Errorf("expected ErrMerge, got %v", err)
	}
	if asm.Pages() != 0 || len(asm.Outline()) != 0 {
		t.Error("failed append must not record anything")
	}
	if err := asm.Abort(); err != nil {
		t.Errorf("Abort: %v", err)
	}
}

func TestPDFDate(t *testing.T) {
	t.Parallel()

	utc := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := PDFDate(utc); got != "D:20240102030405Z" {
		t.Errorf("PDFDate(utc) = %q", got)
	}
	east := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 5*3600+30*60))
	if got := PDFDate(east); got != "D:20240102030405+05'30'" {
		t.Errorf("PDFDate(+05:30) = %q", got)
	}
	west := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("y", -8*3600))
	if got := PDFDate(west); got != "D:20240102030405-08'00'" {
		t.Errorf("PDFDate(-08:00) = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestCombine - Sort, Probe, Merge
// ---------------------------------------------------------------------------

func TestSortByLeadingIndex(t *testing.T) {
	t.Parallel()

	in := []string{"d/010_Ten.pdf", "d/002_Two.pdf", "d/cover.pdf", "d/1_One.pdf", "d/100_Hundred.pdf", "d/002_Another.pdf"}
	got := SortByLeadingIndex(in)
	want := []string{"d/1_One.pdf", "d/002_Another.pdf", "d/002_Two.pdf", "d/010_Ten.pdf", "d/100_Hundred.pdf", "d/cover.pdf"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("SortByLeadingIndex =\n %v\nwant\n %v", got, want)
	}
	if in[0] != "d/010_Ten.pdf" {
		t.Error("input slice must not be reordered")
	}
}

func TestCombine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p10 := filepath.Join(dir, "010_Ten.pdf")
	p2 := filepath.Join(dir, "002_Two.pdf")
	broken := filepath.Join(dir, "005_Broken.pdf")
	writeTestPDF(t, p10, 3, "ten")
	writeTestPDF(t, p2, 1, "two")
	if err := os.WriteFile(broken, []byte("%PDF-1.4 truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	out := filepath.Join(dir, "final", "final_book.pdf")
	merged, err := Combine([]string{p10, broken, p2}, out, zap.New(core))
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	if len(merged) != 2 || merged[0] != p2 || merged[1] != p10 {
		t.Errorf("merged = %v, want [%s %s]", merged, p2, p10)
	}
	if logs.FilterMessage("Skipping unreadable PDF").Len() != 1 {
		t.Errorf("expected one skip warning, got %d logs", logs.Len())
	}
	if n := pageCount(t, out); n != 4 {
		t.Errorf("combined pages = %d, want 4", n)
	}
}

func TestCombine_Empty(t *testing.T) {
	t.Parallel()

	if _, err := Combine(nil, filepath.Join(t.TempDir(), "x.pdf"), nil); !errors.Is(err, ErrNoChapterPDFs) {
		t.Errorf("expected ErrNoChapterPDFs, got %v", err)
	}
}

func TestCombine_AllUnreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "001_Bad.pdf")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Combine([]string{bad}, filepath.Join(dir, "out.pdf"), nil); !errors.Is(err, ErrNoChapterPDFs) {
		t.Errorf("expected ErrNoChapterPDFs, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	writeTestPDF(t, good, 2, "x")

	if n, err := Probe(good); err != nil || n != 2 {
		t.Errorf("Probe(good) = %d, %v", n, err)
	}
	if _, err := Probe(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
