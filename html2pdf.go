package book2pdf

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-book2pdf/internal/process"
)

// Renderer turns a local HTML file into PDF bytes.
// Implementations own their browser and must be closed.
type Renderer interface {
	RenderFile(ctx context.Context, htmlPath string, opts *PrintOptions) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ Renderer = (*RodRenderer)(nil)
	_ Renderer = (*ChromedpRenderer)(nil)
)

// DefaultRenderTimeout bounds loading one chapter page in the browser.
const DefaultRenderTimeout = 2 * time.Minute

// A4 page dimensions and margins in inches.
const (
	a4WidthInches        = 8.27
	a4HeightInches       = 11.69
	chapterMarginInches  = 20 / 25.4 // 20mm
	markdownMarginInches = 0.75
	fallbackMarginInches = 2 / 2.54 // 2cm
)

// PrintOptions describes the page setup handed to the browser.
type PrintOptions struct {
	PaperWidth  float64 // inches
	PaperHeight float64 // inches
	Margin      float64 // inches, all four sides

	// HeaderTitle is shown as a running header on every page. Empty disables it.
	HeaderTitle string

	// PrintMedia switches CSS media emulation to "print" before printing.
	PrintMedia bool

	// PreferCSSPageSize lets an @page rule override paper size and margins.
	PreferCSSPageSize bool

	PrintBackground bool
}

// ChapterPrintOptions is the page setup for downloaded chapter pages:
// A4, 20mm margins and a running header carrying title.
func ChapterPrintOptions(title string) *PrintOptions {
	return &PrintOptions{
		PaperWidth:  a4WidthInches,
		PaperHeight: a4HeightInches,
		Margin:      chapterMarginInches,
		HeaderTitle: title,
	}
}

// MarkdownPrintOptions is the page setup for chapters rendered from markdown:
// A4, 0.75in margins, print media, no backgrounds, CSS page size ignored.
func MarkdownPrintOptions() *PrintOptions {
	return &PrintOptions{
		PaperWidth:  a4WidthInches,
		PaperHeight: a4HeightInches,
		Margin:      markdownMarginInches,
		PrintMedia:  true,
	}
}

// FallbackPrintOptions is the page setup used by the secondary renderer:
// A4 with 2cm margins, matching the fallback stylesheet.
func FallbackPrintOptions() *PrintOptions {
	return &PrintOptions{
		PaperWidth:        a4WidthInches,
		PaperHeight:       a4HeightInches,
		Margin:            fallbackMarginInches,
		PreferCSSPageSize: true,
	}
}

// headerTemplate builds Chrome's header markup for a running title.
func headerTemplate(title string) string {
	return fmt.Sprintf(`<div style="font-size: 9px; font-family: Arial, sans-serif; color: #555; width: 100%%; text-align: center;">%s</div>`, html.EscapeString(title))
}

// browserBin returns the pre-installed browser path, if any.
func browserBin() string {
	return os.Getenv("ROD_BROWSER_BIN")
}

// noSandbox reports whether the browser must run without its sandbox,
// as required in CI and most containers.
func noSandbox() bool {
	if os.Getenv("CI") == "true" || browserBin() != "" {
		return true
	}
	v := os.Getenv("ROD_NO_SANDBOX")
	return v == "true" || v == "1"
}

// RodRenderer renders with headless Chrome through go-rod.
// Rod downloads Chromium on first use if no browser is found.
// The browser is launched lazily and reused across calls.
type RodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// NewRodRenderer creates a RodRenderer. A non-positive timeout selects
// DefaultRenderTimeout.
func NewRodRenderer(timeout time.Duration) *RodRenderer {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &RodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *RodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()
	if bin := browserBin(); bin != "" {
		l = l.Bin(bin)
	}
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return nil
}

// Close releases browser resources. The browser's process group is killed
// after the graceful close so no renderer children survive.
func (r *RodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

func (r *RodRenderer) killLauncher() {
	if r.launcher == nil {
		return
	}
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.launcher.Cleanup()
	r.launcher = nil
}

// RenderFile opens a local HTML file and prints it to PDF.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *RodRenderer) RenderFile(ctx context.Context, htmlPath string, opts *PrintOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = MarkdownPrintOptions()
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: fileURL(htmlPath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.PrintMedia {
		if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
			return nil, fmt.Errorf("%w: emulating print media: %v", ErrPDFGeneration, err)
		}
	}

	reader, err := page.PDF(rodPrintParams(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// rodPrintParams maps PrintOptions onto the DevTools print request.
// Scale stays at 1 so images and text are never shrunk to fit.
func rodPrintParams(opts *PrintOptions) *proto.PagePrintToPDF {
	params := &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(opts.PaperWidth),
		PaperHeight:       floatPtr(opts.PaperHeight),
		MarginTop:         floatPtr(opts.Margin),
		MarginBottom:      floatPtr(opts.Margin),
		MarginLeft:        floatPtr(opts.Margin),
		MarginRight:       floatPtr(opts.Margin),
		Scale:             floatPtr(1),
		PrintBackground:   opts.PrintBackground,
		PreferCSSPageSize: opts.PreferCSSPageSize,
	}

	if opts.HeaderTitle != "" {
		params.DisplayHeaderFooter = true
		params.HeaderTemplate = headerTemplate(opts.HeaderTitle)
		params.FooterTemplate = "<span></span>"
	}

	return params
}

// fileURL turns a local path into a file:// URL the browser can open.
func fileURL(path string) string {
	return "file://" + path
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
