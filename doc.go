// Package book2pdf turns a book published as web pages into a single PDF.
//
// The chapters are discovered from a markdown table of contents: every link
// is a chapter, numbered in order of appearance.
//
// # Pipelines
//
// HTMLBook prints the chapter pages themselves:
//
//  1. Index every link of the table of contents
//  2. Download chapter pages concurrently, pointing relative img, link and
//     script references at the original site
//  3. Print each page with headless Chrome (go-rod), A4 with a running
//     chapter header
//  4. Merge the pages with one outline entry per chapter and document
//     metadata (pdfcpu)
//
// MarkdownBook rebuilds the chapters from markdown:
//
//  1. Index links that point at chapter pages (.html, index.html or the
//     source domain)
//  2. Download each page, store its images locally and convert it to markdown
//  3. Render each markdown chapter with go-rod, falling back to chromedp and
//     a simpler stylesheet when the primary renderer fails
//  4. Concatenate the chapter PDFs by their numeric prefix
//
// # Usage
//
//	book := book2pdf.NewHTMLBook(
//	    book2pdf.WithOutputFile("AOSA.pdf"),
//	    book2pdf.WithLogger(logger),
//	)
//	defer book.Close()
//
//	report, err := book.Build(ctx, "chapters.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d chapters, %d failed\n", len(report.Chapters), report.Failed())
//
// A failing chapter never stops a build: its error is recorded in the
// BuildReport and the remaining chapters are processed. Build returns an
// error only when the table of contents cannot be read, the output cannot
// be written or the context is canceled.
//
// Both builders launch their browsers lazily and must be closed.
package book2pdf
