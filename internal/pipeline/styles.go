package pipeline

// ChapterCSS styles a chapter for the primary renderer. Body text gets a
// 16px floor; headings keep their relative sizes.
const ChapterCSS = `
body {
  font-family: Arial, sans-serif;
  line-height: 1.6;
  padding: 20px;
}
body, p, li, td, th, blockquote, pre, code {
  font-size: max(1em, 16px);
}
img {
  max-width: 100%;
  height: auto;
}
pre, code {
  white-space: pre-wrap;
  word-wrap: break-word;
}
`

// FallbackCSS is the simplified stylesheet used when the primary renderer fails.
const FallbackCSS = `
@page {
  margin: 2cm;
  size: A4;
}
body {
  font-family: Arial, sans-serif;
  line-height: 1.6;
}
img {
  max-width: 100%;
  height: auto;
}
`

// PrintCSS is applied to downloaded chapter pages before they are printed.
const PrintCSS = `
@page {
  size: A4;
  margin: 20mm;
}
h1 {
  page-break-before: avoid;
}
img {
  max-width: 100%;
  height: auto;
}
`
