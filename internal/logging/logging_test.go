package logging

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// TestNew - Level routing
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level      string
		wantDebug  bool
		wantInfo   bool
		wantErrors bool
	}{
		{level: LevelNone},
		{level: LevelQuiet, wantErrors: true},
		{level: LevelNormal, wantInfo: true, wantErrors: true},
		{level: "", wantInfo: true, wantErrors: true},
		{level: "DEBUG", wantDebug: true, wantInfo: true, wantErrors: true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			log, err := New(tt.level, &stdout, &stderr)
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.level, err)
			}

			log.Debug("fetching chapter")
			log.Info("Saved chapter", zap.Int("order", 1))
			log.Error("Failed to render chapter")
			_ = log.Sync()

			if got := strings.Contains(stdout.String(), "fetching chapter"); got != tt.wantDebug {
				t.Errorf("debug on stdout = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(stdout.String(), "Saved chapter"); got != tt.wantInfo {
				t.Errorf("info on stdout = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(stderr.String(), "Failed to render chapter"); got != tt.wantErrors {
				t.Errorf("error on stderr = %v, want %v", got, tt.wantErrors)
			}
			if strings.Contains(stdout.String(), "Failed to render chapter") {
				t.Error("errors must not reach stdout")
			}
		})
	}
}

func TestNew_Format(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	log, err := New(LevelNormal, &stdout, &stderr)
	if err != nil {
		t.Fatal(err)
	}

	log.Info("Created book", zap.String("path", "AOSA.pdf"))
	log.Error("Failed to fetch chapter", zap.Error(fmt.Errorf("wrap: %w", errors.New("404"))))
	_ = log.Sync()

	out := stdout.String()
	for _, want := range []string{"INFO", "book2pdf", "Created book", `"path": "AOSA.pdf"`} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout %q missing %q", out, want)
		}
	}
	if strings.Contains(out, ".go:") {
		t.Errorf("stdout %q should not carry a caller", out)
	}

	errOut := stderr.String()
	if !strings.Contains(errOut, "ERROR") || !strings.Contains(errOut, "wrap: 404") {
		t.Errorf("stderr = %q", errOut)
	}
	if strings.Contains(errOut, "errorVerbose") {
		t.Errorf("stderr %q should not carry errorVerbose", errOut)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New("trace", &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("error = %v, want ErrUnknownLevel", err)
	}
}
