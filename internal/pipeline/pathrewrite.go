package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assetTags are the elements whose src and href attributes are rewritten.
var assetTags = map[string]bool{"img": true, "link": true, "script": true}

var assetAttrs = []string{"src", "href"}

// RewriteAssetURLs makes relative src and href values of img, link and script
// elements absolute by prefixing them with pageDir. Values starting with
// http://, https:// or data: are left alone, as are empty values.
// An empty pageDir returns the HTML unchanged.
func RewriteAssetURLs(htmlContent, pageDir string) (string, error) {
	if pageDir == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, pageDir)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and rewrites asset references.
func rewriteNode(n *html.Node, pageDir string) {
	if n.Type == html.ElementNode {
		if assetTags[n.Data] {
			for _, attr := range assetAttrs {
				rewriteAttr(n, attr, pageDir)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, pageDir)
	}
}

// rewriteAttr rewrites a single attribute if it is a relative reference.
func rewriteAttr(n *html.Node, attrName, pageDir string) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativeRef(attr.Val) {
			continue
		}
		n.Attr[i].Val = pageDir + "/" + strings.TrimLeft(attr.Val, "/")
	}
}

// isRelativeRef returns true if the reference should be rewritten.
func isRelativeRef(ref string) bool {
	if ref == "" {
		return false
	}
	return !strings.HasPrefix(ref, "http://") &&
		!strings.HasPrefix(ref, "https://") &&
		!strings.HasPrefix(ref, "data:")
}
