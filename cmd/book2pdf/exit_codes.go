package main

import (
	"errors"
	"os"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
)

// Exit codes for the book2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Book written
	ExitGeneral = 1 // General error, including failed chapters
	ExitUsage   = 2 // Invalid flags, config, or chapter list
	ExitIO      = 3 // File not found, permission denied, write failures
	ExitBrowser = 4 // Browser/Chrome errors

	ExitInterrupted = 130 // SIGINT or SIGTERM, shell convention 128+2
)

// exitCodeFor returns the exit code for err, matching wrapped errors with errors.Is.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, book2pdf.ErrBrowserConnect) ||
		errors.Is(err, book2pdf.ErrPageCreate) ||
		errors.Is(err, book2pdf.ErrPageLoad) ||
		errors.Is(err, book2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, book2pdf.ErrEmptyChapterList) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) {
		return ExitUsage
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, book2pdf.ErrReadMarkdown) ||
		errors.Is(err, book2pdf.ErrOutputDir) ||
		errors.Is(err, book2pdf.ErrWriteFile) ||
		errors.Is(err, book2pdf.ErrMerge) {
		return ExitIO
	}

	return ExitGeneral
}
