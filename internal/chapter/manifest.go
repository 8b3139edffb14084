package chapter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/yamlutil"
)

// ManifestFileName is written next to the per-chapter outputs.
const ManifestFileName = "manifest.yaml"

// Manifest records what happened to every chapter of one run.
type Manifest struct {
	Source    string          `yaml:"source"`
	Generated time.Time       `yaml:"generated"`
	Chapters  []ManifestEntry `yaml:"chapters"`
}

// ManifestEntry describes one chapter outcome. File is relative to the
// manifest directory and empty when the chapter failed.
type ManifestEntry struct {
	Order int    `yaml:"order"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	File  string `yaml:"file,omitempty"`
	Error string `yaml:"error,omitempty"`
}

// Add appends the outcome for c.
func (m *Manifest) Add(c Chapter, file string, err error) {
	e := ManifestEntry{Order: c.Order, Title: c.Title, URL: c.URL, File: file}
	if err != nil {
		e.Error = err.Error()
		e.File = ""
	}
	m.Chapters = append(m.Chapters, e)
}

// Write stores the manifest as YAML in dir.
func (m *Manifest) Write(dir string) (string, error) {
	data, err := yamlutil.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	p := filepath.Join(dir, ManifestFileName)
	if err := fileutil.WriteFileAtomic(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return p, nil
}

// ReadManifest loads a manifest written by Write.
func ReadManifest(dir string) (*Manifest, error) {
	var m Manifest
	if err := yamlutil.ReadFile(filepath.Join(dir, ManifestFileName), &m, false); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return &m, nil
}
