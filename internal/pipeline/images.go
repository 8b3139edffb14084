package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Downloader fetches the body of a URL.
type Downloader interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// ImageLocalizer downloads every <img> of a page into one shared directory
// and points the page at the local copies.
type ImageLocalizer struct {
	dir    string
	prefix string
	dl     Downloader
	name   func(imageURL string) string
	logger *zap.Logger

	mu     sync.Mutex
	owners map[string]string // local name -> source URL
}

// LocalizedImage is one image written by Localize.
type LocalizedImage struct {
	Source string
	Name   string
}

// NewImageLocalizer stores images in dir and rewrites sources to prefix+name.
// name maps an absolute image URL to a file name; "" skips the image.
func NewImageLocalizer(dir, prefix string, dl Downloader, name func(string) string, logger *zap.Logger) *ImageLocalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageLocalizer{
		dir:    dir,
		prefix: prefix,
		dl:     dl,
		name:   name,
		logger: logger,
		owners: make(map[string]string),
	}
}

// Localize downloads the images referenced by htmlContent. Relative sources
// are resolved against pageDir. A failed image is logged and keeps its
// original src. Returns the rewritten document.
func (l *ImageLocalizer) Localize(ctx context.Context, htmlContent, pageDir string) (string, []LocalizedImage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", nil, fmt.Errorf("parsing chapter page: %w", err)
	}

	var images []LocalizedImage
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return true
		}

		imageURL := src
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			imageURL = pageDir + "/" + strings.TrimLeft(src, "/")
		}

		name, err := l.store(ctx, imageURL)
		if err != nil {
			l.logger.Warn("Skipping image", zap.String("url", imageURL), zap.Error(err))
			return true
		}
		s.SetAttr("src", l.prefix+name)
		images = append(images, LocalizedImage{Source: imageURL, Name: name})
		return true
	})
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	out, err := doc.Html()
	if err != nil {
		return "", nil, fmt.Errorf("rendering chapter page: %w", err)
	}
	return out, images, nil
}

// store downloads imageURL into the images directory and returns its name.
func (l *ImageLocalizer) store(ctx context.Context, imageURL string) (string, error) {
	name := l.name(imageURL)
	if name == "" {
		return "", fmt.Errorf("no usable file name in %q", imageURL)
	}

	data, err := l.dl.Get(ctx, imageURL)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.owners[name]; ok && prev != imageURL {
		l.logger.Warn("Image name collision, overwriting earlier image",
			zap.String("name", name),
			zap.String("previous", prev),
			zap.String("url", imageURL))
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	l.owners[name] = imageURL
	return name, nil
}

// Owners returns a copy of the local-name to source-URL table.
func (l *ImageLocalizer) Owners() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]string, len(l.owners))
	for k, v := range l.owners {
		out[k] = v
	}
	return out
}
