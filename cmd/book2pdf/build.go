package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/hints"
	"github.com/alnah/go-book2pdf/internal/logging"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrNoInput        = errors.New("no chapter list given")
	ErrChaptersFailed = errors.New("chapters failed")
)

// builder is what the html and markdown commands drive.
type builder interface {
	Build(ctx context.Context, markdownPath string) (*book2pdf.BuildReport, error)
	Close() error
}

// Compile-time interface implementation checks.
var (
	_ builder = (*book2pdf.HTMLBook)(nil)
	_ builder = (*book2pdf.MarkdownBook)(nil)
)

// runBuildCmd runs the html or markdown command and returns its exit code.
func runBuildCmd(cmd string, args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	var cfg *config.Config
	var err error
	if cmd == cmdHTML {
		cfg, err = runHTML(ctx, args, env)
	} else {
		cfg, err = runMarkdown(ctx, args, env)
	}
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil && errors.Is(context.Cause(ctx), ErrInterrupted) {
		fmt.Fprintln(env.Stderr, "interrupted")
		return ExitInterrupted
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, cfg))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runHTML builds a book from the chapter pages themselves.
func runHTML(ctx context.Context, args []string, env *Environment) (*config.Config, error) {
	f, positional, err := parseHTMLFlags(args, env.Stderr)
	if err != nil {
		return nil, usageError(err)
	}
	input, err := requireInput(positional)
	if err != nil {
		return nil, err
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return nil, err
	}
	mergeHTMLFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	log, err := newLogger(f.common, cfg, env)
	if err != nil {
		return cfg, err
	}
	defer func() { _ = log.Sync() }()
	log.Debug("Runtime", zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
		zap.Int("workers", book2pdf.ResolveWorkers(cfg.HTML.Workers)))

	opts := append(commonOptions(f.common, cfg, env, log),
		book2pdf.WithOutputDir(cfg.HTML.OutputDir),
		book2pdf.WithOutputFile(cfg.HTML.OutputFile),
		book2pdf.WithWorkers(cfg.HTML.Workers),
		book2pdf.WithTimeout(cfg.HTML.Timeout),
	)
	book := book2pdf.NewHTMLBook(append(opts, env.Options...)...)
	return cfg, build(ctx, book, input, f.common, env, log)
}

// runMarkdown builds a book by round-tripping chapters through markdown.
func runMarkdown(ctx context.Context, args []string, env *Environment) (*config.Config, error) {
	f, positional, err := parseMarkdownFlags(args, env.Stderr)
	if err != nil {
		return nil, usageError(err)
	}
	input, err := requireInput(positional)
	if err != nil {
		return nil, err
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return nil, err
	}
	mergeMarkdownFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	log, err := newLogger(f.common, cfg, env)
	if err != nil {
		return cfg, err
	}
	defer func() { _ = log.Sync() }()

	opts := append(commonOptions(f.common, cfg, env, log),
		book2pdf.WithOutputDir(cfg.Markdown.OutputDir),
		book2pdf.WithDomain(cfg.Source.Domain),
		book2pdf.WithTimeout(cfg.Markdown.Timeout),
	)
	book := book2pdf.NewMarkdownBook(append(opts, env.Options...)...)
	return cfg, build(ctx, book, input, f.common, env, log)
}

// build runs b, closes it and prints the report.
func build(ctx context.Context, b builder, input string, flags commonFlags, env *Environment, log *zap.Logger) (err error) {
	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			log.Warn("Failed to close browser", zap.Error(closeErr))
		}
	}()

	start := env.Now()
	report, err := b.Build(ctx, input)
	if err != nil {
		return err
	}

	printReport(env, report, flags, env.Now().Sub(start))

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d: %w", ErrChaptersFailed, n, len(report.Chapters), firstChapterError(report))
	}
	return nil
}

// commonOptions maps settings shared by both commands.
func commonOptions(flags commonFlags, cfg *config.Config, env *Environment, log *zap.Logger) []book2pdf.Option {
	opts := []book2pdf.Option{
		book2pdf.WithLogger(log),
		book2pdf.WithBaseURL(cfg.Source.BaseURL),
		book2pdf.WithUserAgent(book2pdf.DefaultUserAgent + "/" + Version),
		book2pdf.WithClock(env.Now),
	}
	if flags.renderTimeout > 0 {
		opts = append(opts, book2pdf.WithRenderTimeout(flags.renderTimeout))
	}
	return opts
}

// resolveConfig loads the config named by flag or BOOK2PDF_CONFIG and
// overlays BOOK2PDF_* variables.
func resolveConfig(flagConfig string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr)
	ev := loadEnvConfig()

	name := flagConfig
	if name == "" {
		name = ev.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(configCandidates(name)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(ev, cfg)
	return cfg, nil
}

// mergeHTMLFlags applies explicitly set html flags over cfg.
func mergeHTMLFlags(f *htmlFlags, cfg *config.Config) {
	mergeCommonFlags(f.common, cfg)
	if f.output != "" {
		cfg.HTML.OutputFile = f.output
	}
	if f.outputDir != "" {
		cfg.HTML.OutputDir = f.outputDir
	}
	if f.workers != 0 {
		cfg.HTML.Workers = f.workers
	}
	if f.common.timeout > 0 {
		cfg.HTML.Timeout = f.common.timeout
	}
}

// mergeMarkdownFlags applies explicitly set markdown flags over cfg.
func mergeMarkdownFlags(f *markdownFlags, cfg *config.Config) {
	mergeCommonFlags(f.common, cfg)
	if f.outputDir != "" {
		cfg.Markdown.OutputDir = f.outputDir
	}
	if f.domain != "" {
		cfg.Source.Domain = f.domain
	}
	if f.common.timeout > 0 {
		cfg.Markdown.Timeout = f.common.timeout
	}
}

func mergeCommonFlags(f commonFlags, cfg *config.Config) {
	if f.baseURL != "" {
		cfg.Source.BaseURL = f.baseURL
	}
}

// newLogger builds the console logger. -q and -v win over logging.level.
func newLogger(f commonFlags, cfg *config.Config, env *Environment) (*zap.Logger, error) {
	level := cfg.Logging.Level
	switch {
	case f.quiet:
		level = logging.LevelQuiet
	case f.verbose:
		level = logging.LevelDebug
	}
	log, err := logging.New(level, env.Stdout, env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return log, nil
}

func requireInput(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", ErrNoInput
	case 1:
		return positional[0], nil
	default:
		return "", fmt.Errorf("%w: expected one chapter list, got %d arguments", ErrUsage, len(positional))
	}
}

func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// printReport lists failed chapters on stderr and a summary on stdout.
func printReport(env *Environment, r *book2pdf.BuildReport, f commonFlags, elapsed time.Duration) {
	for _, c := range r.Chapters {
		if c.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %03d %s: %v\n", c.Chapter.Order, c.Chapter.Title, c.Err)
		}
	}
	if f.quiet {
		return
	}

	if r.Output != "" {
		if f.verbose {
			fmt.Fprintf(env.Stdout, "Created %s (%d pages, %v)\n", r.Output, r.Pages, elapsed.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.Output)
		}
	}
	fmt.Fprintf(env.Stdout, "%d succeeded, %d failed\n", r.Succeeded(), r.Failed())
}

func firstChapterError(r *book2pdf.BuildReport) error {
	for _, c := range r.Chapters {
		if c.Err != nil {
			return c.Err
		}
	}
	return nil
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, cfg *config.Config) string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch {
	case errors.Is(err, book2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, book2pdf.ErrFetch), errors.Is(err, book2pdf.ErrHTTPStatus):
		return hints.ForNetwork(cfg.Source.BaseURL)
	case errors.Is(err, book2pdf.ErrEmptyChapterList):
		return hints.ForEmptyTOC(cfg.Source.Domain)
	case errors.Is(err, book2pdf.ErrOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}

// configCandidates returns where LoadConfig looks for a config name.
func configCandidates(name string) []string {
	if fileutil.IsFilePath(name) {
		return nil
	}
	paths := []string{name + ".yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "go-book2pdf", name+".yaml"))
	}
	return paths
}
