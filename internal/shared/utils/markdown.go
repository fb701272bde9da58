package utils

import "gitlab.com/golang-commonmark/markdown"

// Raw HTML trong content bị escape, chỉ render Markdown thuần
var markdownRenderer = markdown.New(
	markdown.HTML(false),
	markdown.Linkify(true),
	markdown.Typographer(true),
	markdown.MaxNesting(10),
)

// RenderMarkdown converts a CommonMark body to HTML
func RenderMarkdown(src string) string {
	return markdownRenderer.RenderToString([]byte(src))
}
