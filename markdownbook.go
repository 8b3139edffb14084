package book2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alnah/go-book2pdf/internal/chapter"
	"github.com/alnah/go-book2pdf/internal/fetch"
	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/pdfmerge"
	"github.com/alnah/go-book2pdf/internal/pipeline"
)

// Layout of a markdown build under its output directory.
const (
	MarkdownDir   = "markdown"
	PDFDir        = "pdf"
	ImagesDir     = "images"
	FinalBookName = "final_book.pdf"

	// imageRefPrefix is how chapter markdown refers to the shared images
	// directory, relative to both the markdown and pdf directories.
	imageRefPrefix = "../" + ImagesDir + "/"
)

// MarkdownBook builds a book by converting every chapter page to markdown
// with locally stored images, rendering each markdown chapter to its own
// PDF and concatenating those PDFs.
type MarkdownBook struct {
	s            settings
	indexer      *chapter.Indexer
	resolver     chapter.Resolver
	client       *fetch.Client
	toMarkdown   pipeline.MarkdownConverter
	preprocessor pipeline.MarkdownPreprocessor
	css          pipeline.CSSInjector
}

// NewMarkdownBook creates a MarkdownBook. Without WithRenderer and
// WithFallbackRenderer, a RodRenderer and a ChromedpRenderer are created
// lazily and closed by Close.
func NewMarkdownBook(opts ...Option) *MarkdownBook {
	s := defaultSettings()
	s.outputDir = DefaultMarkdownOutputDir
	s.timeout = fetch.MarkdownTimeout
	for _, opt := range opts {
		opt(&s)
	}

	if s.renderer == nil {
		s.renderer = NewRodRenderer(s.renderTimeout)
		s.ownsRenderer = true
	}
	if s.fallback == nil {
		s.fallback = NewChromedpRenderer(s.renderTimeout)
		s.ownsFallback = true
	}

	return &MarkdownBook{
		s:            s,
		indexer:      chapter.NewIndexer(),
		resolver:     chapter.NewResolver(s.baseURL),
		client:       newFetchClient(s),
		toMarkdown:   &pipeline.HTMLToMarkdown{},
		preprocessor: &pipeline.ChapterPreprocessor{},
		css:          &pipeline.CSSInjection{},
	}
}

// Close releases the renderers the book created.
func (b *MarkdownBook) Close() error {
	var err error
	if b.s.ownsRenderer {
		err = multierr.Append(err, b.s.renderer.Close())
	}
	if b.s.ownsFallback {
		err = multierr.Append(err, b.s.fallback.Close())
	}
	return err
}

// Dir returns the path of one of the layout directories.
func (b *MarkdownBook) Dir(name string) string {
	return filepath.Join(b.s.outputDir, name)
}

// Build runs the whole pipeline for the table of contents at markdownPath.
// An empty chapter list is fatal. Chapter failures are reported in the
// BuildReport; when no chapter PDF could be produced, the report has no
// Output and the error is nil.
func (b *MarkdownBook) Build(ctx context.Context, markdownPath string) (report *BuildReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	for _, dir := range []string{MarkdownDir, PDFDir, ImagesDir} {
		if err := os.MkdirAll(b.Dir(dir), dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
		}
	}

	content, err := os.ReadFile(markdownPath) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	chapters, err := b.indexer.IndexPages(ctx, string(content), b.s.domain)
	if err != nil {
		return nil, err
	}
	b.s.logger.Info("Found chapters", zap.Int("count", len(chapters)))

	images := pipeline.NewImageLocalizer(b.Dir(ImagesDir), imageRefPrefix, b.client, chapter.ImageName, b.s.logger)

	report = &BuildReport{Chapters: make([]ChapterResult, 0, len(chapters))}
	var pdfs []string
	for _, c := range chapters {
		if err := ctx.Err(); err != nil {
			report.Chapters = append(report.Chapters, ChapterResult{Chapter: c, Err: err})
			continue
		}

		res := b.FetchChapter(ctx, c, images)
		if res.Err == nil {
			res = b.RenderChapter(ctx, c, res.Path)
		}
		if res.Err == nil {
			pdfs = append(pdfs, res.Path)
		}
		report.Chapters = append(report.Chapters, res)
	}

	report.Manifest = writeManifest(b.s, b.s.outputDir, markdownPath, report.Chapters)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	out := filepath.Join(b.s.outputDir, FinalBookName)
	merged, err := pdfmerge.Combine(pdfs, out, b.s.logger)
	if errors.Is(err, ErrNoChapterPDFs) {
		b.s.logger.Error("No PDFs were generated to combine")
		return report, nil
	}
	if err != nil {
		return report, err
	}

	report.Output = out
	if n, err := pdfmerge.Probe(out); err == nil {
		report.Pages = n
	}
	b.s.logger.Info("Created book", zap.String("path", out), zap.Int("chapters", len(merged)))
	return report, nil
}

// FetchChapter downloads one chapter page, stores its images in the shared
// images directory and writes the page as markdown. The result Path is the
// markdown file.
func (b *MarkdownBook) FetchChapter(ctx context.Context, c Chapter, images *pipeline.ImageLocalizer) ChapterResult {
	log := b.s.logger.With(zap.Int("order", c.Order), zap.String("title", c.Title))
	url := b.resolver.Resolve(c.URL)

	log.Info("Downloading chapter", zap.String("url", url))
	body, err := b.client.Get(ctx, url)
	if err != nil {
		log.Error("Failed to download chapter", zap.String("url", url), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	page, localized, err := images.Localize(ctx, string(body), chapter.PageDir(url))
	if err != nil {
		log.Error("Failed to process chapter images", zap.String("url", url), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}
	log.Debug("Stored images", zap.Int("count", len(localized)))

	md, err := b.toMarkdown.ToMarkdown(ctx, page)
	if err != nil {
		log.Error("Failed to convert chapter", zap.String("url", url), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	path := filepath.Join(b.Dir(MarkdownDir), chapter.MarkdownFileName(c))
	if err := fileutil.WriteFileAtomic(path, []byte(md), filePermissions); err != nil {
		err = fmt.Errorf("%w: %v", ErrWriteFile, err)
		log.Error("Failed to save chapter", zap.String("path", path), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	log.Info("Saved chapter", zap.String("path", path))
	return ChapterResult{Chapter: c, Path: path}
}

// RenderChapter renders the markdown file at mdPath to a PDF in the pdf
// directory. The primary renderer is tried first; when it fails the
// chapter is rendered again with the fallback renderer and simplified
// styling. The result Path is the PDF file.
func (b *MarkdownBook) RenderChapter(ctx context.Context, c Chapter, mdPath string) ChapterResult {
	log := b.s.logger.With(zap.Int("order", c.Order), zap.String("title", c.Title))

	content, err := os.ReadFile(mdPath) // #nosec G304 -- file written by FetchChapter
	if err != nil {
		return ChapterResult{Chapter: c, Err: fmt.Errorf("%w: %v", ErrRender, err)}
	}

	md := b.preprocessor.PreprocessMarkdown(ctx, string(content))
	body, err := pipeline.NewGoldmarkConverter(pipeline.WithRawHTML(), pipeline.WithTitle(c.Title)).ToHTML(ctx, md)
	if err != nil {
		return ChapterResult{Chapter: c, Err: fmt.Errorf("%w: %v", ErrRender, err)}
	}

	pdfPath, err := filepath.Abs(filepath.Join(b.Dir(PDFDir), chapter.PDFFileName(c)))
	if err != nil {
		return ChapterResult{Chapter: c, Err: fmt.Errorf("%w: %v", ErrRender, err)}
	}
	// The HTML lives in the pdf directory so ../images/ resolves.
	htmlPath := strings.TrimSuffix(pdfPath, ".pdf") + ".html"
	defer func() { _ = fileutil.RemoveIfExists(htmlPath) }()

	primaryErr := b.renderWith(ctx, b.s.renderer, body, pipeline.ChapterCSS, htmlPath, pdfPath, MarkdownPrintOptions())
	if primaryErr == nil {
		log.Info("Rendered chapter", zap.String("path", pdfPath))
		return b.checkPDF(c, pdfPath)
	}
	if ctx.Err() != nil {
		return ChapterResult{Chapter: c, Err: ctx.Err()}
	}
	log.Warn("Primary renderer failed, trying fallback", zap.Error(primaryErr))

	fallbackErr := b.renderWith(ctx, b.s.fallback, body, pipeline.FallbackCSS, htmlPath, pdfPath, FallbackPrintOptions())
	if fallbackErr != nil {
		err := fmt.Errorf("%w: %v", ErrRender, multierr.Combine(primaryErr, fallbackErr))
		log.Error("Failed to render chapter", zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	log.Info("Rendered chapter with fallback", zap.String("path", pdfPath))
	return b.checkPDF(c, pdfPath)
}

// renderWith styles body with css, writes it to htmlPath and prints it to pdfPath.
func (b *MarkdownBook) renderWith(ctx context.Context, r Renderer, body, css, htmlPath, pdfPath string, opts *PrintOptions) error {
	page := b.css.InjectCSS(ctx, body, css)
	if err := fileutil.WriteFileAtomic(htmlPath, []byte(page), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}

	pdfBuf, err := r.RenderFile(ctx, htmlPath, opts)
	if err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(pdfPath, pdfBuf, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}
	return nil
}

// checkPDF confirms the rendered file exists and is not empty.
func (b *MarkdownBook) checkPDF(c Chapter, path string) ChapterResult {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return ChapterResult{Chapter: c, Err: fmt.Errorf("%w: %s", ErrPDFMissing, path)}
	}
	return ChapterResult{Chapter: c, Path: path}
}
