package http

import "github.com/gin-gonic/gin"

// Register attaches draft routes to the given router group. Extra middleware
// applies to the mutating routes only.
func (h *Handler) Register(rg *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	chain := func(last gin.HandlerFunc) []gin.HandlerFunc {
		out := make([]gin.HandlerFunc, 0, len(mutating)+1)
		return append(append(out, mutating...), last)
	}

	rg.GET("", h.list)
	rg.POST("", chain(h.save)...)
	rg.DELETE("/:id", chain(h.delete)...)
}
