package handlers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/catalog"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

// catalogMaxAge is the client-side cache lifetime for catalog responses.
const catalogMaxAge = "public, max-age=3600"

// CatalogSource supplies the parsed lesson archive.
type CatalogSource interface {
	Catalog(ctx context.Context) (*domain.Catalog, error)
	Stats(ctx context.Context) (domain.CatalogStats, error)
}

// VideosHandler serves the lesson archive and its aggregate numbers.
type VideosHandler struct {
	source CatalogSource
}

// NewVideosHandler constructs VideosHandler.
func NewVideosHandler(source CatalogSource) *VideosHandler {
	return &VideosHandler{source: source}
}

// RegisterRoutes binds the catalog endpoints.
func (h *VideosHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/videos", h.list)
	r.GET("/videos/stats", h.stats)
}

func (h *VideosHandler) list(c *gin.Context) {
	cat, err := h.source.Catalog(c.Request.Context())
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}

	etag := catalogETag(cat)
	c.Header("Cache-Control", catalogMaxAge)
	c.Header("ETag", etag)

	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, cat)
}

func (h *VideosHandler) stats(c *gin.Context) {
	stats, err := h.source.Stats(c.Request.Context())
	if err != nil {
		h.respondCatalogError(c, err)
		return
	}

	c.Header("Cache-Control", catalogMaxAge)
	c.JSON(http.StatusOK, stats)
}

func (h *VideosHandler) respondCatalogError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "Archivio momentaneamente non disponibile"))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Errore interno, riprova più tardi"))
}

// catalogETag derives a validator from the artifact's identity fields so
// clients can revalidate cheaply across the reload interval.
func catalogETag(cat *domain.Catalog) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", cat.LastUpdated, cat.TotalVideos)))
	return fmt.Sprintf(`"%x"`, sum[:8])
}
