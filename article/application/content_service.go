package application

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/rs/zerolog/log"
)

const defaultSummaryLimit = 10

// ContentService assembles render-ready article content from stored markdown and
// image records. It only reads: no article or image is ever written.
type ContentService struct {
	articles domain.ArticleRepository
	images   domain.ImageRepository
	blobs    domain.BlobStore
	markdown MarkdownRenderer
	resolver *ImageResolver
	timeout  time.Duration
}

func NewContentService(
	articles domain.ArticleRepository,
	images domain.ImageRepository,
	blobs domain.BlobStore,
	markdown MarkdownRenderer,
	resolver *ImageResolver,
) *ContentService {
	if resolver == nil {
		resolver = NewImageResolver(images, NewImageCache())
	}
	return &ContentService{
		articles: articles,
		images:   images,
		blobs:    blobs,
		markdown: markdown,
		resolver: resolver,
		timeout:  resolver.lookupTimeout,
	}
}

// withTimeout bounds one store call by the resolver's lookup timeout.
func (s *ContentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ContentService) listLinkedImages(ctx context.Context, articleID string) ([]*domain.ImageRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.images.ListImagesLinkedToArticle(ctx, articleID)
}

// Resolver exposes the image resolver shared by content and listing paths.
func (s *ContentService) Resolver() *ImageResolver {
	return s.resolver
}

// GetArticleContent loads an article's markdown, migrates legacy inline images to
// tokens, resolves the referenced images and renders the body to HTML.
// A missing article or markdown blob is an error; missing images render placeholders.
func (s *ContentService) GetArticleContent(ctx context.Context, articleID string) (*domain.ArticleContent, error) {
	article, raw, err := s.loadArticleMarkdown(ctx, articleID)
	if err != nil {
		return nil, err
	}

	linked, err := s.listLinkedImages(ctx, article.ID)
	if err != nil {
		log.Warn().Err(err).Str("articleId", article.ID).Msg("Failed to list linked images, skipping legacy migration")
		linked = nil
	}
	s.resolver.Prime(linked)

	normalized := NormalizeLegacyMarkdown(string(raw), linked)

	resolved := s.resolver.GetManyByIDs(ctx, normalized.ReferencedIDs)
	projected := make(map[string]*domain.ImageProjection, len(resolved))
	referenced := make([]*domain.ImageProjection, 0, len(resolved))
	for _, id := range normalized.ReferencedIDs {
		record, ok := resolved[id]
		if !ok {
			continue
		}
		projection := record.Project()
		projected[id] = projection
		referenced = append(referenced, projection)
	}

	if missing := len(normalized.ReferencedIDs) - len(referenced); missing > 0 {
		log.Info().Str("articleId", article.ID).Int("missing", missing).Msg("Rendering placeholders for unresolved images")
	}

	withFigures := ReplaceTokens(normalized.Markdown, projected)
	meta, body := splitFrontMatter(article.ID, withFigures)

	rendered, err := s.markdown.Render(body)
	if err != nil {
		return nil, fmt.Errorf("failed to render article %s: %w", article.ID, err)
	}

	return &domain.ArticleContent{
		ID:               article.ID,
		Title:            pickTitle(meta, rendered.Title, article.Title),
		ContentHTML:      rendered.HTML,
		Markdown:         normalized.Markdown,
		ReferencedImages: referenced,
		FrontMatter:      meta,
	}, nil
}

// ResolveFeaturedImageForArticle returns the image representing an article in
// listings, or nil when no candidate resolves.
func (s *ContentService) ResolveFeaturedImageForArticle(ctx context.Context, articleID string) (*domain.ImageProjection, error) {
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return s.featuredImage(ctx, article), nil
}

// ListArticleSummaries lists published articles decorated with their featured image.
func (s *ContentService) ListArticleSummaries(ctx context.Context, limit, offset int) ([]*domain.ArticleSummary, error) {
	if limit <= 0 {
		limit = defaultSummaryLimit
	}

	listCtx, cancel := s.withTimeout(ctx)
	articles, err := s.articles.ListPublishedArticles(listCtx, limit, offset)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	summaries := make([]*domain.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		summaries = append(summaries, &domain.ArticleSummary{
			ID:            a.ID,
			Title:         a.Title,
			PublishedAt:   a.PublishedAt,
			FeaturedImage: s.featuredImage(ctx, a),
		})
	}

	return summaries, nil
}

func (s *ContentService) featuredImage(ctx context.Context, article *domain.Article) *domain.ImageProjection {
	record := s.resolver.ResolveFeaturedImage(ctx, article.ID, FeaturedImageRef{
		FeaturedImageID: article.FeaturedImageID,
		LegacyImageURL:  article.ImageURL,
	})
	return record.Project()
}

func (s *ContentService) getArticle(ctx context.Context, articleID string) (*domain.Article, error) {
	if strings.TrimSpace(articleID) == "" {
		return nil, fmt.Errorf("article ID cannot be empty")
	}

	getCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	article, err := s.articles.GetArticle(getCtx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load article %s: %w", articleID, err)
	}
	return article, nil
}

func (s *ContentService) loadArticleMarkdown(ctx context.Context, articleID string) (*domain.Article, []byte, error) {
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, nil, err
	}

	if article.MarkdownPath == "" {
		return nil, nil, fmt.Errorf("article %s has no markdown path: %w", articleID, domain.ErrBlobNotFound)
	}

	blobCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.blobs.GetBytes(blobCtx, article.MarkdownPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch markdown for article %s: %w", articleID, err)
	}

	return article, raw, nil
}

// splitFrontMatter separates YAML, TOML or JSON front matter from the body.
// Malformed front matter is treated as part of the body.
func splitFrontMatter(articleID string, markdown string) (map[string]any, []byte) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(markdown), &meta)
	if err != nil {
		log.Warn().Err(err).Str("articleId", articleID).Msg("Failed to parse front matter, rendering it as body")
		return map[string]any{}, []byte(markdown)
	}
	return meta, bytes.TrimLeft(body, "\n")
}

func pickTitle(meta map[string]any, headingTitle string, storedTitle string) string {
	if title, ok := meta["title"].(string); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if headingTitle != "" {
		return headingTitle
	}
	return storedTitle
}
