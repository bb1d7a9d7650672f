package application

import (
	"regexp"
	"strings"

	"github.com/dfryer1193/newsroom/article/domain"
)

// LegacyNormalization is the result of rewriting inline image markdown to tokens.
type LegacyNormalization struct {
	Markdown      string
	ReferencedIDs []string
}

// NormalizeLegacyMarkdown rewrites ![alt](url) and ![alt](url "title") references to
// known image urls into {{image:<id>}} tokens. Images are applied in the order given,
// so the first image claiming a url wins. ReferencedIDs covers tokens already present
// as well as new substitutions, ordered by first appearance in the result.
func NormalizeLegacyMarkdown(markdown string, known []*domain.ImageRecord) LegacyNormalization {
	out := markdown
	for _, img := range known {
		if img == nil || !img.HasURL() || !IsValidImageID(img.ID) {
			continue
		}
		pattern := legacyImagePattern(img.URL)
		if !pattern.MatchString(out) {
			continue
		}
		out = pattern.ReplaceAllLiteralString(out, imageToken(img.ID))
	}

	return LegacyNormalization{
		Markdown:      out,
		ReferencedIDs: ExtractTokenIDs(out),
	}
}

// legacyImagePattern matches markdown image syntax pointing at exactly url.
func legacyImagePattern(url string) *regexp.Regexp {
	return regexp.MustCompile(`!\[[^\]]*\]\(\s*` + regexp.QuoteMeta(strings.TrimSpace(url)) + `(?:\s+"[^"]*")?\s*\)`)
}
