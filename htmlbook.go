package book2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alnah/go-book2pdf/internal/chapter"
	"github.com/alnah/go-book2pdf/internal/fetch"
	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/pdfmerge"
	"github.com/alnah/go-book2pdf/internal/pipeline"
)

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// printCopySuffix names the short-lived copy of a chapter page that carries
// the print stylesheet while it is rendered.
const printCopySuffix = ".print.html"

// HTMLBook builds a book by downloading every chapter page as HTML,
// printing each page with the browser and merging the results with an
// outline entry per chapter.
type HTMLBook struct {
	s        settings
	indexer  *chapter.Indexer
	resolver chapter.Resolver
	client   *fetch.Client
	css      pipeline.CSSInjector
}

// NewHTMLBook creates an HTMLBook. Without WithRenderer, a RodRenderer is
// created lazily and closed by Close.
func NewHTMLBook(opts ...Option) *HTMLBook {
	s := defaultSettings()
	s.outputDir = DefaultHTMLOutputDir
	s.outputFile = DefaultHTMLOutputFile
	s.timeout = fetch.PageTimeout
	for _, opt := range opts {
		opt(&s)
	}

	if s.renderer == nil {
		s.renderer = NewRodRenderer(s.renderTimeout)
		s.ownsRenderer = true
	}

	return &HTMLBook{
		s:        s,
		indexer:  chapter.NewIndexer(),
		resolver: chapter.NewResolver(s.baseURL),
		client:   newFetchClient(s),
		css:      &pipeline.CSSInjection{},
	}
}

// Close releases the renderer if the book created it.
func (b *HTMLBook) Close() error {
	if b.s.ownsRenderer {
		return b.s.renderer.Close()
	}
	return nil
}

// Build runs the whole pipeline for the table of contents at markdownPath.
// Chapter failures are reported in the BuildReport; the returned error is
// reserved for an unreadable table of contents, an unusable output
// directory and a failed final write.
func (b *HTMLBook) Build(ctx context.Context, markdownPath string) (report *BuildReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	content, err := os.ReadFile(markdownPath) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	chapters, err := b.indexer.Index(ctx, string(content), chapter.AllLinks)
	if err != nil {
		return nil, err
	}
	b.s.logger.Info("Found chapters", zap.Int("count", len(chapters)))

	if err := os.MkdirAll(b.s.outputDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	report = &BuildReport{Chapters: b.FetchAll(ctx, chapters)}

	var asm Assembly
	if err = ctx.Err(); err == nil {
		if asm, err = b.Assemble(ctx); err == nil {
			markAssemblyFailures(report.Chapters, asm.Failed)
		}
	}
	report.Manifest = writeManifest(b.s, b.s.outputDir, markdownPath, report.Chapters)
	if err != nil {
		return report, err
	}

	report.Output = b.s.outputFile
	report.Pages = asm.Pages
	return report, nil
}

// markAssemblyFailures moves print and merge errors onto the chapters whose
// files they belong to.
func markAssemblyFailures(results []ChapterResult, failed map[string]error) {
	for i, r := range results {
		if r.Err != nil || r.Path == "" {
			continue
		}
		if err, ok := failed[filepath.Clean(r.Path)]; ok {
			results[i].Err = err
			results[i].Path = ""
		}
	}
}

// FetchAll downloads chapters concurrently. Results are in chapter order.
func (b *HTMLBook) FetchAll(ctx context.Context, chapters []Chapter) []ChapterResult {
	return fanOut(ctx, ResolveWorkers(b.s.workers), chapters, b.FetchChapter)
}

// FetchChapter downloads one chapter page, points its relative assets at
// the page's directory and writes it to the output directory. The saved page
// is otherwise unchanged; the print stylesheet is added only at render time.
func (b *HTMLBook) FetchChapter(ctx context.Context, c Chapter) ChapterResult {
	log := b.s.logger.With(zap.Int("order", c.Order), zap.String("title", c.Title))
	url := b.resolver.ResolvePage(c.URL)

	log.Info("Downloading chapter", zap.String("url", url))
	body, err := b.client.Get(ctx, url)
	if err != nil {
		log.Error("Failed to download chapter", zap.String("url", url), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	page, err := pipeline.RewriteAssetURLs(string(body), chapter.PageDir(url))
	if err != nil {
		log.Error("Failed to process chapter", zap.String("url", url), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	path := filepath.Join(b.s.outputDir, chapter.HTMLFileName(c))
	if err := fileutil.WriteFileAtomic(path, []byte(page), filePermissions); err != nil {
		err = fmt.Errorf("%w: %v", ErrWriteFile, err)
		log.Error("Failed to save chapter", zap.String("path", path), zap.Error(err))
		return ChapterResult{Chapter: c, Err: err}
	}

	log.Info("Saved chapter", zap.String("path", path))
	return ChapterResult{Chapter: c, Path: path}
}

// Assemble prints every chapter HTML file of the output directory, in file
// name order, and merges them into the output file. A chapter that cannot
// be printed or merged is left out and recorded in Assembly.Failed.
func (b *HTMLBook) Assemble(ctx context.Context) (Assembly, error) {
	files, err := filepath.Glob(filepath.Join(b.s.outputDir, "*.html"))
	if err != nil {
		return Assembly{}, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	sort.Strings(files)

	if dir := filepath.Dir(b.s.outputFile); dir != "" {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return Assembly{}, fmt.Errorf("%w: %v", ErrOutputDir, err)
		}
	}

	result := Assembly{Failed: map[string]error{}}
	asm := pdfmerge.NewAssembler(b.s.outputFile)
	for _, file := range files {
		if strings.HasSuffix(file, printCopySuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Assembly{}, multierr.Append(err, asm.Abort())
		}
		if err := b.appendChapter(ctx, asm, file); err != nil {
			b.s.logger.Error("Skipping chapter", zap.String("path", file), zap.Error(err))
			result.Failed[filepath.Clean(file)] = err
		}
	}

	now := b.s.now()
	meta := pdfmerge.Metadata{
		Creator:  Creator,
		Producer: Producer,
		Created:  now,
		Modified: now,
	}
	if err := asm.Finish(meta); err != nil {
		return Assembly{}, err
	}

	result.Pages = asm.Pages()
	b.s.logger.Info("Created book",
		zap.String("path", b.s.outputFile),
		zap.Int("chapters", len(asm.Outline())),
		zap.Int("pages", result.Pages))
	return result, nil
}

// appendChapter prints a copy of one chapter file with the print
// stylesheet to a temporary PDF next to it and folds it into asm. Neither
// the copy nor the temporary PDF outlives the call.
func (b *HTMLBook) appendChapter(ctx context.Context, asm *pdfmerge.Assembler, file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(abs) // #nosec G304 -- file from the output directory
	if err != nil {
		return fmt.Errorf("reading chapter: %w", err)
	}

	outlineTitle := chapter.OutlineTitle(file)
	header := outlineTitle
	if h := pipeline.FirstHeading(string(content)); h != "" {
		header = h
	}

	printCopy := strings.TrimSuffix(abs, ".html") + printCopySuffix
	defer b.removeTemp(printCopy)
	page := b.css.InjectCSS(ctx, string(content), pipeline.PrintCSS)
	if err := fileutil.WriteFileAtomic(printCopy, []byte(page), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}

	pdfBuf, err := b.s.renderer.RenderFile(ctx, printCopy, ChapterPrintOptions(header))
	if err != nil {
		return err
	}

	tmp := abs + ".pdf"
	defer b.removeTemp(tmp)

	if err := fileutil.WriteFileAtomic(tmp, pdfBuf, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}

	if err := asm.Append(tmp, outlineTitle); err != nil {
		return err
	}
	b.s.logger.Info("Added chapter", zap.String("title", outlineTitle))
	return nil
}

func (b *HTMLBook) removeTemp(path string) {
	if err := fileutil.RemoveIfExists(path); err != nil {
		b.s.logger.Warn("Failed to remove temporary file", zap.String("path", path), zap.Error(err))
	}
}

// newFetchClient builds the HTTP client shared by every download of a build.
func newFetchClient(s settings) *fetch.Client {
	opts := []fetch.Option{fetch.WithUserAgent(s.userAgent)}
	if s.httpClient != nil {
		opts = append(opts, fetch.WithHTTPClient(s.httpClient))
	}
	return fetch.New(s.timeout, opts...)
}

// writeManifest records results next to the chapter outputs. A failure is
// logged and yields an empty path.
func writeManifest(s settings, dir, source string, results []ChapterResult) string {
	m := &chapter.Manifest{Source: source, Generated: s.now()}
	for _, r := range results {
		file := ""
		if r.Path != "" {
			if rel, err := filepath.Rel(dir, r.Path); err == nil {
				file = filepath.ToSlash(rel)
			}
		}
		m.Add(r.Chapter, file, r.Err)
	}

	path, err := m.Write(dir)
	if err != nil {
		s.logger.Warn("Failed to write manifest", zap.Error(err))
		return ""
	}
	return path
}
