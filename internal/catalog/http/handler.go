package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pcbuildsite/pcbuild-backend/internal/catalog"
)

type Handler struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Handler {
	return &Handler{catalog: c}
}

// Register attaches catalog routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}
