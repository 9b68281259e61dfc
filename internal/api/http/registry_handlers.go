package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ernestbuffington/embedkit/internal/domain/cache"
)

// ListDefinitions returns every registered provider definition
func (h *Handlers) ListDefinitions(c *gin.Context) {
	defs := h.definitions.List()
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(defs),
		"definitions": defs,
	})
}

// GetDefinition returns one provider definition
func (h *Handlers) GetDefinition(c *gin.Context) {
	def, ok := h.definitions.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "definition not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"definition": def,
	})
}

// CatalogLookup maps a resource URL to a directory provider endpoint
func (h *Handlers) CatalogLookup(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "url query parameter is required",
		})
		return
	}
	if h.catalog == nil || !h.catalog.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "provider catalog is disabled",
		})
		return
	}

	match, ok := h.catalog.Lookup(url)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"url":     url,
			"error":   "no catalog provider serves this URL",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     url,
		"match":   match,
	})
}

// CacheStats aggregates response-cache usage across open sessions
func (h *Handlers) CacheStats(c *gin.Context) {
	stats := make([]cache.Stats, 0)
	capturesHeld := 0
	for _, s := range h.sessions.List() {
		stats = append(stats, s.Coordinator.CacheStats()...)
		capturesHeld += s.ContentCache.Held()
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"responses":     stats,
		"captures_held": capturesHeld,
	})
}
