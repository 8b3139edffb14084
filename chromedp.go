package book2pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpRenderer renders with headless Chrome driven by chromedp.
// It serves as the secondary renderer: a separate browser and protocol
// client from RodRenderer, so a failure in one rarely repeats in the other.
type ChromedpRenderer struct {
	timeout       time.Duration
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpRenderer creates a ChromedpRenderer. A non-positive timeout
// selects DefaultRenderTimeout.
func NewChromedpRenderer(timeout time.Duration) *ChromedpRenderer {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &ChromedpRenderer{timeout: timeout}
}

// ensureBrowser lazily starts the browser.
func (r *ChromedpRenderer) ensureBrowser() error {
	if r.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Headless,
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if bin := browserBin(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	if noSandbox() {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Running with no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	return nil
}

// Close shuts the browser down.
func (r *ChromedpRenderer) Close() error {
	if r.browserCtx == nil {
		return nil
	}
	err := chromedp.Cancel(r.browserCtx)
	r.browserCancel()
	r.allocCancel()
	r.browserCtx = nil
	return err
}

// RenderFile opens a local HTML file in a new tab and prints it to PDF.
func (r *ChromedpRenderer) RenderFile(ctx context.Context, htmlPath string, opts *PrintOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = FallbackPrintOptions()
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	// Tab contexts derive from the browser, not the caller; forward cancellation.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(fileURL(htmlPath)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	var pdfBuf []byte
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdfBuf, _, err = page.PrintToPDF().
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			WithMarginTop(opts.Margin).
			WithMarginBottom(opts.Margin).
			WithMarginLeft(opts.Margin).
			WithMarginRight(opts.Margin).
			WithPrintBackground(opts.PrintBackground).
			WithPreferCSSPageSize(opts.PreferCSSPageSize).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}
