package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  html        Print chapter pages and merge them into one PDF")
	fmt.Fprintln(w, "  markdown    Rebuild chapters from markdown, then combine their PDFs")
	fmt.Fprintln(w, "  doctor      Check Chrome, environment and network")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'book2pdf help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Source:")
	fmt.Fprintln(w, "      --base-url <url>          Prefix for relative chapter links")
	fmt.Fprintln(w, "  -t, --timeout <duration>      Download timeout per request")
	fmt.Fprintln(w, "      --render-timeout <dur>    Browser timeout per chapter (default 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name|path>      Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                   Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                 Show debug output")
}

// printHTMLUsage prints usage for the html command.
func printHTMLUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf html <chapters.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download every chapter linked from chapters.md, print each page with")
	fmt.Fprintln(w, "headless Chrome and merge them with one bookmark per chapter.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>           Merged PDF (default AOSA.pdf)")
	fmt.Fprintln(w, "      --output-dir <dir>        Chapter HTML files (default ./output)")
	fmt.Fprintln(w, "  -w, --workers <n>             Parallel downloads, 0 = auto (max 8)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download timeout defaults to 180s.")
}

// printMarkdownUsage prints usage for the markdown command.
func printMarkdownUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf markdown <chapters.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download chapter pages and their images, convert them to markdown,")
	fmt.Fprintln(w, "render each chapter to PDF and combine them into final_book.pdf.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --output-dir <dir>        Root of markdown/, pdf/, images/ (default output)")
	fmt.Fprintln(w, "      --domain <host>           Links containing it are chapters (default aosabook.org)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download timeout defaults to 60s.")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf doctor [--json] [--offline] [--base-url <url>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, sandbox settings, the temp directory and the book site.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdHTML:
		printHTMLUsage(env.Stdout)
	case cmdMarkdown:
		printMarkdownUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: book2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: book2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
