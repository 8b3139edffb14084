package main

// Notes:
// - TestLoadDotEnv sets variables with t.Setenv so they are restored after
//   the test; it cannot run in parallel.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no command", args: []string{"book2pdf"}, wantCode: ExitUsage, wantStderr: "Usage:"},
		{name: "version", args: []string{"book2pdf", "version"}, wantCode: ExitSuccess, wantStdout: "book2pdf dev"},
		{name: "version flag", args: []string{"book2pdf", "--version"}, wantCode: ExitSuccess, wantStdout: "book2pdf dev"},
		{name: "help", args: []string{"book2pdf", "help"}, wantCode: ExitSuccess, wantStdout: "Usage:"},
		{name: "unknown command", args: []string{"book2pdf", "pdfify"}, wantCode: ExitUsage, wantStderr: "Unknown command: pdfify"},
		{name: "completion bash", args: []string{"book2pdf", "completion", "bash"}, wantCode: ExitSuccess, wantStdout: "complete -F"},
		{name: "completion unknown shell", args: []string{"book2pdf", "completion", "tcsh"}, wantCode: ExitUsage, wantStderr: "unsupported shell"},
		{name: "html without input", args: []string{"book2pdf", "html"}, wantCode: ExitUsage, wantStderr: "no chapter list given"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		topic    string
		wantCode int
		want     string
	}{
		{topic: cmdHTML, wantCode: ExitSuccess, want: "--output-dir"},
		{topic: cmdMarkdown, wantCode: ExitSuccess, want: "--domain"},
		{topic: "doctor", wantCode: ExitSuccess, want: "--offline"},
		{topic: "completion", wantCode: ExitSuccess, want: "fish"},
		{topic: "version", wantCode: ExitSuccess, want: "book2pdf version"},
		{topic: "help", wantCode: ExitSuccess, want: "help [command]"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := testEnv(nil)
			if code := runHelp([]string{tt.topic}, env); code != tt.wantCode {
				t.Errorf("runHelp(%q) = %d, want %d", tt.topic, code, tt.wantCode)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("help for %s = %q, want %q", tt.topic, stdout, tt.want)
			}
		})
	}
}

func TestRunHelp_UnknownTopic(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := testEnv(nil)
	if code := runHelp([]string{"convert"}, env); code != ExitUsage {
		t.Errorf("runHelp() = %d, want ExitUsage", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr.String(), "Unknown command: convert") {
		t.Errorf("stderr = %q", stderr)
	}
}

// ---------------------------------------------------------------------------
// TestLoadDotEnv - .env loading
// ---------------------------------------------------------------------------

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "BOOK2PDF_DOMAIN=example.org\nBOOK2PDF_WORKERS=3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Registered for restore, then unset so godotenv may fill it.
	t.Setenv("BOOK2PDF_DOMAIN", "")
	os.Unsetenv("BOOK2PDF_DOMAIN")
	t.Setenv("BOOK2PDF_WORKERS", "6")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}

	if got := os.Getenv("BOOK2PDF_DOMAIN"); got != "example.org" {
		t.Errorf("BOOK2PDF_DOMAIN = %q, want example.org", got)
	}
	if got := os.Getenv("BOOK2PDF_WORKERS"); got != "6" {
		t.Errorf("BOOK2PDF_WORKERS = %q, want the existing 6", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Parallel()

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("loadDotEnv(missing) = %v, want nil", err)
	}
	if err := loadDotEnv(""); err != nil {
		t.Errorf("loadDotEnv(\"\") = %v, want nil", err)
	}
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BOOK2PDF-DOMAIN=example.org\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := loadDotEnv(path); err == nil {
		t.Error("loadDotEnv(malformed) = nil, want error")
	}
}
