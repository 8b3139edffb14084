package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-book2pdf/internal/config"
)

const envPrefix = "BOOK2PDF_"

// envConfig holds overrides read from BOOK2PDF_* variables.
type envConfig struct {
	ConfigPath string        // BOOK2PDF_CONFIG
	OutputDir  string        // BOOK2PDF_OUTPUT_DIR
	BaseURL    string        // BOOK2PDF_BASE_URL
	Domain     string        // BOOK2PDF_DOMAIN
	Timeout    time.Duration // BOOK2PDF_TIMEOUT
	Workers    int           // BOOK2PDF_WORKERS
	LogLevel   string        // BOOK2PDF_LOG_LEVEL
}

// knownEnvVars lists valid BOOK2PDF_* variables; other names get a typo warning.
var knownEnvVars = map[string]bool{
	"BOOK2PDF_CONFIG":     true,
	"BOOK2PDF_OUTPUT_DIR": true,
	"BOOK2PDF_BASE_URL":   true,
	"BOOK2PDF_DOMAIN":     true,
	"BOOK2PDF_TIMEOUT":    true,
	"BOOK2PDF_WORKERS":    true,
	"BOOK2PDF_LOG_LEVEL":  true,
	"BOOK2PDF_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads BOOK2PDF_* variables. Malformed durations and
// non-positive worker counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("BOOK2PDF_CONFIG"),
		OutputDir:  os.Getenv("BOOK2PDF_OUTPUT_DIR"),
		BaseURL:    os.Getenv("BOOK2PDF_BASE_URL"),
		Domain:     os.Getenv("BOOK2PDF_DOMAIN"),
		LogLevel:   os.Getenv("BOOK2PDF_LOG_LEVEL"),
	}

	if timeout := os.Getenv("BOOK2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("BOOK2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized BOOK2PDF_* name.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overlays set variables on cfg. It runs after the config
// file is loaded and before flags are merged, giving
// flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.BaseURL != "" {
		cfg.Source.BaseURL = env.BaseURL
	}
	if env.Domain != "" {
		cfg.Source.Domain = env.Domain
	}
	if env.OutputDir != "" {
		cfg.HTML.OutputDir = env.OutputDir
		cfg.Markdown.OutputDir = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.HTML.Timeout = env.Timeout
		cfg.Markdown.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.HTML.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
}
