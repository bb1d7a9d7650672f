package application

import "strings"

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attributeEscaper = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"<", "&lt;",
	)
	// braceEscaper keeps escaped text from ever forming a new image token.
	braceEscaper = strings.NewReplacer("{", "&#123;")
)

// EscapeHTML encodes s for use as HTML text content.
func EscapeHTML(s string) string {
	if s == "" {
		return ""
	}
	return htmlEscaper.Replace(s)
}

// EscapeAttribute encodes s for use inside a double-quoted HTML attribute.
func EscapeAttribute(s string) string {
	if s == "" {
		return ""
	}
	return attributeEscaper.Replace(s)
}

func escapeFigureText(s string) string {
	return braceEscaper.Replace(EscapeHTML(s))
}

func escapeFigureAttribute(s string) string {
	return braceEscaper.Replace(EscapeAttribute(s))
}
