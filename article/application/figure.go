package application

import (
	"strings"

	"github.com/dfryer1193/newsroom/article/domain"
)

const (
	missingImageLabel = "Image unavailable"
	defaultAltText    = "Article image"
)

// BuildFigure renders the <figure> markup substituted for an image token.
// A nil record, or one without a url, yields a placeholder figure carrying tokenID
// so the page keeps its structure when an image has been deleted.
func BuildFigure(record *domain.ImageProjection, tokenID string) string {
	var b strings.Builder

	if record == nil || strings.TrimSpace(record.URL) == "" {
		b.WriteString(`<figure class="article-figure missing-image" data-image-id="`)
		b.WriteString(escapeFigureAttribute(tokenID))
		b.WriteString(`"><span class="missing-image__label">`)
		b.WriteString(missingImageLabel)
		b.WriteString(`</span></figure>`)
		return b.String()
	}

	alt := record.AltText
	if strings.TrimSpace(alt) == "" {
		alt = record.Caption
	}
	if strings.TrimSpace(alt) == "" {
		alt = defaultAltText
	}

	b.WriteString(`<figure class="article-figure" data-image-id="`)
	b.WriteString(escapeFigureAttribute(record.ID))
	b.WriteString(`"><img src="`)
	b.WriteString(escapeFigureAttribute(record.URL))
	b.WriteString(`" alt="`)
	b.WriteString(escapeFigureAttribute(alt))
	b.WriteString(`" loading="lazy" decoding="async" />`)

	caption := strings.TrimSpace(record.Caption)
	credit := strings.TrimSpace(record.Credit)
	if caption != "" || credit != "" {
		b.WriteString("<figcaption>")
		if caption != "" {
			b.WriteString(`<span class="article-figure__caption">`)
			b.WriteString(escapeFigureText(caption))
			b.WriteString("</span>")
		}
		if credit != "" {
			b.WriteString(`<span class="article-figure__credit">Photo by `)
			b.WriteString(escapeFigureText(credit))
			b.WriteString("</span>")
		}
		b.WriteString("</figcaption>")
	}

	b.WriteString("</figure>")
	return b.String()
}

// ReplaceTokens substitutes every image token in markdown with its figure.
// Ids missing from images render the placeholder figure; tokens whose id does
// not fit the token grammar are removed.
func ReplaceTokens(markdown string, images map[string]*domain.ImageProjection) string {
	return looseImageTokenRegex.ReplaceAllStringFunc(markdown, func(token string) string {
		id, ok := parseImageToken(token)
		if !ok {
			return ""
		}
		return BuildFigure(images[id], id)
	})
}
