package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// Build subcommands.
const (
	cmdHTML     = "html"
	cmdMarkdown = "markdown"
)

// commonFlags holds flags shared by both build commands.
type commonFlags struct {
	config        string
	quiet         bool
	verbose       bool
	baseURL       string
	timeout       time.Duration
	renderTimeout time.Duration
}

// htmlFlags holds flags for the html command.
type htmlFlags struct {
	common    commonFlags
	output    string
	outputDir string
	workers   int
}

// markdownFlags holds flags for the markdown command.
type markdownFlags struct {
	common    commonFlags
	outputDir string
	domain    string
}

// addCommonFlags adds common flags to a FlagSet. Zero values mean
// "keep the config or environment value".
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
	fs.StringVar(&f.baseURL, "base-url", "", "prefix for relative chapter links")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "download timeout per request (e.g. 30s, 2m)")
	fs.DurationVar(&f.renderTimeout, "render-timeout", 0, "browser timeout per chapter")
}

func newHTMLFlagSet(f *htmlFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(cmdHTML, flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "merged PDF path (default AOSA.pdf)")
	fs.StringVar(&f.outputDir, "output-dir", "", "directory for chapter HTML files (default ./output)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel downloads (0 = auto, max 8)")
	addCommonFlags(fs, &f.common)
	return fs
}

func newMarkdownFlagSet(f *markdownFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(cmdMarkdown, flag.ContinueOnError)
	fs.StringVar(&f.outputDir, "output-dir", "", "root of markdown, pdf and images directories (default output)")
	fs.StringVar(&f.domain, "domain", "", "links containing it count as chapters (default aosabook.org)")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseHTMLFlags parses html command arguments and returns the positional ones.
func parseHTMLFlags(args []string, usage io.Writer) (*htmlFlags, []string, error) {
	f := &htmlFlags{}
	fs := newHTMLFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printHTMLUsage(usage) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseMarkdownFlags parses markdown command arguments and returns the positional ones.
func parseMarkdownFlags(args []string, usage io.Writer) (*markdownFlags, []string, error) {
	f := &markdownFlags{}
	fs := newMarkdownFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printMarkdownUsage(usage) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
