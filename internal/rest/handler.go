package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dfryer1193/newsroom/api"
	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxPageSize = 100

// ContentProvider produces render-ready articles and listings.
type ContentProvider interface {
	GetArticleContent(ctx context.Context, articleID string) (*domain.ArticleContent, error)
	ResolveFeaturedImageForArticle(ctx context.Context, articleID string) (*domain.ImageProjection, error)
	ListArticleSummaries(ctx context.Context, limit, offset int) ([]*domain.ArticleSummary, error)
}

// ImageCacheController drops memoized image lookups.
type ImageCacheController interface {
	Invalidate(id string)
	InvalidateURL(url string)
	Reset()
}

type Handler struct {
	content ContentProvider
	images  ImageCacheController
}

func NewHandler(content ContentProvider, images ImageCacheController) *Handler {
	return &Handler{
		content: content,
		images:  images,
	}
}

func (h *Handler) GetArticles(c *gin.Context) {
	limit, err := queryInt(c, "limit", 10)
	if err != nil || limit < 1 || limit > maxPageSize {
		c.JSON(http.StatusBadRequest, api.Error{Error: "limit must be between 1 and 100"})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, api.Error{Error: "offset must be a non-negative integer"})
		return
	}

	summaries, err := h.content.ListArticleSummaries(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewArticleSummaries(summaries))
}

func (h *Handler) GetArticle(c *gin.Context) {
	content, err := h.content.GetArticleContent(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.NewArticleContent(content))
}

func (h *Handler) GetFeaturedImage(c *gin.Context) {
	image, err := h.content.ResolveFeaturedImageForArticle(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if image == nil {
		c.JSON(http.StatusNotFound, api.Error{Error: "article has no featured image"})
		return
	}

	c.JSON(http.StatusOK, api.NewImage(image))
}

func (h *Handler) InvalidateImage(c *gin.Context) {
	id := c.Param("imageId")
	h.images.Invalidate(id)
	log.Info().Str("imageId", id).Msg("Invalidated cached image")
	c.Status(http.StatusNoContent)
}

func (h *Handler) InvalidateImageURL(c *gin.Context) {
	var req api.InvalidateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	h.images.InvalidateURL(req.URL)
	log.Info().Str("url", req.URL).Msg("Invalidated cached image url")
	c.Status(http.StatusNoContent)
}

func (h *Handler) ResetImageCache(c *gin.Context) {
	h.images.Reset()
	log.Info().Msg("Reset image cache")
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrArticleNotFound), errors.Is(err, domain.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, api.Error{Error: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, api.Error{Error: "internal server error"})
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
