package book2pdf

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-book2pdf/internal/chapter"
)

// Default locations and names.
const (
	DefaultHTMLOutputDir     = "./output"
	DefaultHTMLOutputFile    = "AOSA.pdf"
	DefaultMarkdownOutputDir = "output"
	DefaultUserAgent         = "go-book2pdf"
)

// Metadata written into the merged V1 document.
const (
	Creator  = "HTML2PDF Converter"
	Producer = "go-book2pdf with headless Chrome"
)

// settings holds configuration shared by HTMLBook and MarkdownBook.
type settings struct {
	logger        *zap.Logger
	httpClient    *http.Client
	userAgent     string
	baseURL       string
	domain        string
	outputDir     string
	outputFile    string
	timeout       time.Duration
	renderTimeout time.Duration
	workers       int
	now           func() time.Time
	renderer      Renderer
	fallback      Renderer
	ownsRenderer  bool
	ownsFallback  bool
}

func defaultSettings() settings {
	return settings{
		logger:    zap.NewNop(),
		userAgent: DefaultUserAgent,
		baseURL:   chapter.DefaultBaseURL,
		domain:    chapter.DefaultDomain,
		now:       time.Now,
	}
}

// Option configures a book builder.
type Option func(*settings)

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient sets the client used for chapter and image downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithBaseURL sets the base that relative chapter links are appended to.
func WithBaseURL(base string) Option {
	return func(s *settings) {
		if base != "" {
			s.baseURL = base
		}
	}
}

// WithDomain sets the source domain used to recognize chapter links.
func WithDomain(domain string) Option {
	return func(s *settings) {
		if domain != "" {
			s.domain = domain
		}
	}
}

// WithOutputDir sets the directory receiving chapter files.
func WithOutputDir(dir string) Option {
	return func(s *settings) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithOutputFile sets the merged PDF path.
func WithOutputFile(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.outputFile = path
		}
	}
}

// WithTimeout sets the per-request download timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRenderTimeout sets how long the browser may take to load one page.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.renderTimeout = d
		}
	}
}

// WithWorkers sets the number of concurrent chapter downloads.
// Zero selects ResolveWorkers' automatic size.
func WithWorkers(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.workers = n
		}
	}
}

// WithClock sets the time source for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRenderer replaces the primary renderer. The caller keeps ownership
// and must close it.
func WithRenderer(r Renderer) Option {
	return func(s *settings) {
		s.renderer = r
	}
}

// WithFallbackRenderer replaces the secondary renderer used when the
// primary one fails. The caller keeps ownership and must close it.
func WithFallbackRenderer(r Renderer) Option {
	return func(s *settings) {
		s.fallback = r
	}
}
