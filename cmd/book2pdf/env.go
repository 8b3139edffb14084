package main

import (
	"io"
	"os"
	"time"

	book2pdf "github.com/alnah/go-book2pdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	// DotEnv is the .env file loaded before dispatch; empty skips it.
	DotEnv string
	// Options are appended after the ones derived from flags and config.
	Options []book2pdf.Option
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		DotEnv: ".env",
	}
}
