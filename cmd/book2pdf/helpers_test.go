package main

// Notes:
// - Shared test infrastructure: a stub renderer producing real gofpdf pages
//   and a tiny chapter site. Not code under test.

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"

	book2pdf "github.com/alnah/go-book2pdf"
)

// stubRenderer implements book2pdf.Renderer without a browser.
type stubRenderer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *stubRenderer) RenderFile(_ context.Context, path string, _ *book2pdf.PrintOptions) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(40, 10, filepath.Base(path))
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *stubRenderer) Close() error { return nil }

// testEnv returns an Environment writing to buffers, with renderers stubbed.
func testEnv(r book2pdf.Renderer) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
	}
	if r != nil {
		env.Options = []book2pdf.Option{
			book2pdf.WithRenderer(r),
			book2pdf.WithFallbackRenderer(r),
		}
	}
	return env, &stdout, &stderr
}

// newChapterSite serves two chapters under /en/; gone.html is a 404.
func newChapterSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/en/intro.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Introduction</h1><p>Architecture of open source.</p></body></html>`)
	})
	mux.HandleFunc("/en/bash.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>The Bourne-Again Shell</h1><p>Bash is a Unix shell.</p></body></html>`)
	})
	mux.HandleFunc("/en/", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeTOC writes a table of contents linking the given chapter files.
func writeTOC(t *testing.T, dir string, links ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("# Contents\n\n")
	for _, l := range links {
		fmt.Fprintf(&b, "- [%s](%s)\n", strings.TrimSuffix(l, ".html"), l)
	}
	path := filepath.Join(dir, "chapters.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}
