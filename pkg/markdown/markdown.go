// Package markdown renders generated Markdown documents to standalone HTML.
package markdown

import (
	"html"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const extensions = parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock

// ToHTML converts Markdown to an HTML fragment. Raw HTML in the input is skipped.
func ToHTML(md string) string {
	p := parser.NewWithExtensions(extensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML,
	})
	return string(markdown.ToHTML([]byte(md), p, r))
}

// Document wraps the rendered fragment into a complete HTML page.
func Document(title, md string) string {
	return "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>" +
		html.EscapeString(title) + "</title>\n</head>\n<body>\n" + ToHTML(md) + "</body>\n</html>\n"
}
