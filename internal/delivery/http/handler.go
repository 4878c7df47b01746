package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodscout/backend/internal/domain"
)

// FoodSearcher is the lookup operation the handler depends on.
type FoodSearcher interface {
	Search(ctx context.Context, query string, limit int) []domain.FoodRecord
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher FoodSearcher
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher FoodSearcher) *Handler {
	return &Handler{searcher: searcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodscout-backend",
		"version": "1.0.0",
	})
}

// SearchFoods handles food search requests.
// GET /api/v1/foods/search?q=<query>&limit=<n>
func (h *Handler) SearchFoods(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "search service not available",
		})
		return
	}

	query := c.Query("q")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	foods := h.searcher.Search(c.Request.Context(), query, limit)

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"count": len(foods),
		"foods": foods,
	})
}
