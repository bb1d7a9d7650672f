package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApi registers every route on router.
func NewApi(router *gin.Engine, h *Handler) {
	articlesV1 := router.Group("articles/v1")
	{
		articlesV1.GET("/", h.GetArticles)
		articlesV1.GET("/:articleId", h.GetArticle)
		articlesV1.GET("/:articleId/featured-image", h.GetFeaturedImage)
	}

	imagesV1 := router.Group("images/v1")
	{
		imagesV1.POST("/cache/reset", h.ResetImageCache)
		imagesV1.POST("/cache/url", h.InvalidateImageURL)
		imagesV1.POST("/:imageId/invalidate", h.InvalidateImage)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}
