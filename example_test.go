package book2pdf_test

import (
	"context"
	"fmt"
	"time"

	book2pdf "github.com/alnah/go-book2pdf"
)

// Example builds a book from chapter pages listed in chapters.md.
// It needs network access and Chrome, so it has no checked output.
func Example() {
	book := book2pdf.NewHTMLBook(
		book2pdf.WithBaseURL("https://aosabook.org/en/"),
		book2pdf.WithOutputFile("AOSA.pdf"),
		book2pdf.WithWorkers(4),
	)
	defer book.Close()

	report, err := book.Build(context.Background(), "chapters.md")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s: %d pages, %d chapters failed\n", report.Output, report.Pages, report.Failed())
}

// Example_markdownBook rebuilds chapters from markdown with a longer
// render timeout for image-heavy pages.
func Example_markdownBook() {
	book := book2pdf.NewMarkdownBook(
		book2pdf.WithDomain("aosabook.org"),
		book2pdf.WithOutputDir("output"),
		book2pdf.WithRenderTimeout(2*time.Minute),
	)
	defer book.Close()

	report, err := book.Build(context.Background(), "chapters.md")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, c := range report.Chapters {
		if c.Err != nil {
			fmt.Printf("%s: %v\n", c.Chapter, c.Err)
		}
	}
}

func ExampleResolveWorkers() {
	fmt.Println(book2pdf.ResolveWorkers(3))
	// Output: 3
}
