package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxURLLength    = 2048 // Browser limit
	MaxDomainLength = 253  // RFC 1035
	MaxPathLength   = 4096 // PATH_MAX on Linux
)

// MaxWorkers caps html.workers.
const MaxWorkers = 8

// Log levels accepted by logging.level.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// Default values mirrored by DefaultConfig.
const (
	DefaultBaseURL           = "https://aosabook.org/en/"
	DefaultDomain            = "aosabook.org"
	DefaultHTMLOutputDir     = "./output"
	DefaultHTMLOutputFile    = "AOSA.pdf"
	DefaultMarkdownOutputDir = "output"
	DefaultHTMLTimeout       = 180 * time.Second
	DefaultMarkdownTimeout   = 60 * time.Second
)

// Config holds all configuration for book generation.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	HTML     HTMLConfig     `yaml:"html"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig describes where chapters are published.
type SourceConfig struct {
	BaseURL string `yaml:"baseURL"` // Prefix for relative chapter links
	Domain  string `yaml:"domain"`  // Links containing it count as chapters (markdown pipeline)
}

// HTMLConfig configures the direct HTML pipeline.
type HTMLConfig struct {
	OutputDir  string        `yaml:"outputDir"`
	OutputFile string        `yaml:"outputFile"`
	Workers    int           `yaml:"workers"` // 0 = auto
	Timeout    time.Duration `yaml:"timeout"` // Per-request download timeout
}

// MarkdownConfig configures the markdown round-trip pipeline.
type MarkdownConfig struct {
	OutputDir string        `yaml:"outputDir"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"` // none, normal, debug
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("source.baseURL", c.Source.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Source.BaseURL != "" {
		u, err := url.Parse(c.Source.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: source.baseURL must be an http(s) URL, got %q", ErrInvalidValue, c.Source.BaseURL)
		}
	}
	if err := validateFieldLength("source.domain", c.Source.Domain, MaxDomainLength); err != nil {
		return err
	}

	if err := validateFieldLength("html.outputDir", c.HTML.OutputDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("html.outputFile", c.HTML.OutputFile, MaxPathLength); err != nil {
		return err
	}
	if c.HTML.Workers < 0 || c.HTML.Workers > MaxWorkers {
		return fmt.Errorf("%w: html.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.HTML.Workers)
	}
	if c.HTML.Timeout < 0 {
		return fmt.Errorf("%w: html.timeout must be positive, got %s", ErrInvalidValue, c.HTML.Timeout)
	}

	if err := validateFieldLength("markdown.outputDir", c.Markdown.OutputDir, MaxPathLength); err != nil {
		return err
	}
	if c.Markdown.Timeout < 0 {
		return fmt.Errorf("%w: markdown.timeout must be positive, got %s", ErrInvalidValue, c.Markdown.Timeout)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", LevelNone, LevelNormal, LevelDebug:
		// valid
	default:
		return fmt.Errorf("%w: logging.level must be none, normal, or debug, got %q", ErrInvalidValue, c.Logging.Level)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL: DefaultBaseURL,
			Domain:  DefaultDomain,
		},
		HTML: HTMLConfig{
			OutputDir:  DefaultHTMLOutputDir,
			OutputFile: DefaultHTMLOutputFile,
			Timeout:    DefaultHTMLTimeout,
		},
		Markdown: MarkdownConfig{
			OutputDir: DefaultMarkdownOutputDir,
			Timeout:   DefaultMarkdownTimeout,
		},
		Logging: LoggingConfig{Level: LevelNormal},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg, true); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-book2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-book2pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
