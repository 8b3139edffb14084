// Package pipeline holds the HTML and markdown transformations applied to
// chapter pages.
//
// Stages provided:
//   - Markdown to HTML conversion via Goldmark
//   - HTML to markdown conversion via html-to-markdown
//   - Absolute rewriting of relative asset references in downloaded pages
//   - Image localization into a shared directory
//   - CSS injection and heading extraction
//
// PDF rendering and merging live in the root book2pdf package. This package
// only deals with document content.
package pipeline
