package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// RenderedMarkdown contains the results of rendering an article body
type RenderedMarkdown struct {
	Title string
	HTML  string
}

type relativeLinkTransformer struct {
	domain string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		link, linkOk := n.(*ast.Link)
		img, imgOk := n.(*ast.Image)
		if !linkOk && !imgOk {
			return ast.WalkContinue, nil
		}

		dest := ""
		if linkOk {
			dest = string(link.Destination)
		} else if imgOk {
			dest = string(img.Destination)
		}

		if dest == "" || strings.HasPrefix(dest, "#") {
			return ast.WalkContinue, nil
		}

		if isRelativeLink(dest) {
			destFile := path.Base(dest)
			if imgOk {
				img.Destination = []byte(t.domain + "/images/" + destFile)
			} else if linkOk {
				// Strip .md and .html extensions from links
				destFile = strings.TrimSuffix(destFile, ".md")
				destFile = strings.TrimSuffix(destFile, ".html")
				link.Destination = []byte(t.domain + "/" + destFile)
			}
		}

		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	// Absolute path check
	if strings.HasPrefix(dest, "/") {
		if strings.HasPrefix(dest, "//") {
			return false
		}
		return true
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	if strings.Contains(dest, ":") {
		return false
	}

	return true
}

// MarkdownRenderer defines the interface for converting an article body to HTML.
// Raw HTML in the body, such as pre-escaped figures, passes through unchanged.
type MarkdownRenderer interface {
	Render(markdown []byte) (*RenderedMarkdown, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
	siteURL  string
}

// NewMarkdownRenderer builds a CommonMark renderer with GFM extensions.
// When siteURL is set, relative links and images are rewritten against it.
func NewMarkdownRenderer(siteURL string) MarkdownRenderer {
	siteURL = strings.TrimSuffix(strings.TrimSpace(siteURL), "/")

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}
	if siteURL != "" {
		parserOptions = append(parserOptions, parser.WithASTTransformers(
			util.Prioritized(&relativeLinkTransformer{domain: siteURL}, 100),
		))
	}

	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
		siteURL:  siteURL,
	}
}

func (r *MarkdownRendererImpl) Render(markdown []byte) (*RenderedMarkdown, error) {
	var buf bytes.Buffer
	err := r.renderer.Convert(markdown, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &RenderedMarkdown{
		Title: extractArticleTitle(markdown),
		HTML:  buf.String(),
	}, nil
}

// extractArticleTitle returns the text of a leading "# " heading, or "".
func extractArticleTitle(markdown []byte) string {
	for _, line := range strings.Split(string(markdown), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		title, found := strings.CutPrefix(trimmed, "# ")
		if !found {
			return ""
		}
		return strings.TrimSpace(title)
	}

	return ""
}
