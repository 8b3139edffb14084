package chapter

import (
	"net/url"
	"path"
	"strings"

	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// DefaultBaseURL prefixes chapter destinations that are not absolute.
const DefaultBaseURL = "https://aosabook.org/en/"

// DefaultDomain identifies chapter links hosted on the default site.
const DefaultDomain = "aosabook.org"

// Resolver turns table-of-contents destinations into fetchable URLs.
type Resolver struct {
	Base string
}

// NewResolver returns a Resolver for base, or DefaultBaseURL when empty.
func NewResolver(base string) Resolver {
	if base == "" {
		base = DefaultBaseURL
	}
	return Resolver{Base: base}
}

// Resolve returns href unchanged when it is absolute, otherwise Base+href.
func (r Resolver) Resolve(href string) string {
	if IsAbsolute(href) {
		return href
	}
	return r.Base + href
}

// ResolvePage drops every literal "index.html" before resolving, so a
// section index resolves to its directory.
func (r Resolver) ResolvePage(href string) string {
	return r.Resolve(strings.ReplaceAll(href, "index.html", ""))
}

// IsAbsolute reports whether ref starts with http:// or https://.
func IsAbsolute(ref string) bool {
	return fileutil.IsURL(ref)
}

// PageDir returns pageURL up to, not including, its last '/'.
func PageDir(pageURL string) string {
	if i := strings.LastIndex(pageURL, "/"); i >= 0 {
		return pageURL[:i]
	}
	return pageURL
}

// JoinDir appends ref to dir with exactly one separating '/'.
func JoinDir(dir, ref string) string {
	return dir + "/" + strings.TrimLeft(ref, "/")
}

// ImageName returns the sanitized file name for an image URL: the last
// element of its path, without query or fragment.
func ImageName(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "/" || base == "." {
		return ""
	}
	return SafeImageName(base)
}
