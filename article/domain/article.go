package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrArticleNotFound is returned when article metadata does not exist.
	ErrArticleNotFound = errors.New("article not found")
	// ErrBlobNotFound is returned by a BlobStore when nothing is stored at a path.
	ErrBlobNotFound = errors.New("blob not found")
)

// Article is the stored metadata of a newspaper article.
// The markdown body lives in a blob store at MarkdownPath.
// FeaturedImageID is the modern featured image reference; ImageURL is the
// legacy one, matched against image urls.
type Article struct {
	ID              string
	Title           string
	MarkdownPath    string
	FeaturedImageID string
	ImageURL        string
	UpdatedAt       time.Time
	PublishedAt     time.Time
	CreatedAt       time.Time
}

// ArticleContent is the render-ready form of an article.
// Markdown holds the normalized source, with legacy inline images rewritten to tokens,
// and is what an edit flow should persist back.
type ArticleContent struct {
	ID               string
	Title            string
	ContentHTML      string
	Markdown         string
	ReferencedImages []*ImageProjection
	FrontMatter      map[string]any
}

// ArticleSummary decorates an article in listings with its featured image.
type ArticleSummary struct {
	ID            string
	Title         string
	PublishedAt   time.Time
	FeaturedImage *ImageProjection
}

type ArticleRepository interface {
	SaveArticle(ctx context.Context, a *Article) error
	GetArticle(ctx context.Context, id string) (*Article, error)
	ListPublishedArticles(ctx context.Context, limit int, offset int) ([]*Article, error)
}

// BlobStore defines read access to stored article bodies.
type BlobStore interface {
	GetBytes(ctx context.Context, path string) ([]byte, error)
}
