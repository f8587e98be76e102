package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/logistics-lab/palletbook/internal/core/errors"
)

// Handler exposes catalog lookups over HTTP.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers the catalog routes on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/catalog/distributors", h.HandleListDistributors)
	r.GET("/v1/catalog/categories", h.HandleListCategories)
}

// HandleListDistributors handles GET /v1/catalog/distributors?category=
func (h *Handler) HandleListDistributors(c *gin.Context) {
	distributors, err := h.repo.ListDistributors(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to list distributors",
			Details:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"distributors": distributors})
}

// HandleListCategories handles GET /v1/catalog/categories
func (h *Handler) HandleListCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to list categories",
			Details:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
