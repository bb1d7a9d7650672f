package api

import (
	"time"

	"github.com/dfryer1193/newsroom/article/domain"
)

type Image struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	Credit      string `json:"credit,omitempty"`
	AltText     string `json:"alt_text,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
}

type ArticleContent struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	ContentHTML      string         `json:"content_html"`
	Markdown         string         `json:"markdown"`
	ReferencedImages []Image        `json:"referenced_images"`
	FrontMatter      map[string]any `json:"front_matter,omitempty"`
}

type ArticleSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	FeaturedImage *Image     `json:"featured_image"`
}

type InvalidateURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type Error struct {
	Error string `json:"error"`
}

// NewImage converts a projection to its wire form. A nil projection stays nil.
func NewImage(p *domain.ImageProjection) *Image {
	if p == nil {
		return nil
	}
	return &Image{
		ID:          p.ID,
		URL:         p.URL,
		Caption:     p.Caption,
		Credit:      p.Credit,
		AltText:     p.AltText,
		StoragePath: p.StoragePath,
	}
}

func NewArticleContent(c *domain.ArticleContent) *ArticleContent {
	images := make([]Image, 0, len(c.ReferencedImages))
	for _, p := range c.ReferencedImages {
		if img := NewImage(p); img != nil {
			images = append(images, *img)
		}
	}

	return &ArticleContent{
		ID:               c.ID,
		Title:            c.Title,
		ContentHTML:      c.ContentHTML,
		Markdown:         c.Markdown,
		ReferencedImages: images,
		FrontMatter:      c.FrontMatter,
	}
}

func NewArticleSummaries(summaries []*domain.ArticleSummary) []ArticleSummary {
	out := make([]ArticleSummary, 0, len(summaries))
	for _, s := range summaries {
		summary := ArticleSummary{
			ID:            s.ID,
			Title:         s.Title,
			FeaturedImage: NewImage(s.FeaturedImage),
		}
		if !s.PublishedAt.IsZero() {
			published := s.PublishedAt
			summary.PublishedAt = &published
		}
		out = append(out, summary)
	}
	return out
}
