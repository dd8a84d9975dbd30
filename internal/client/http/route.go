package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers client routes. All of them require authentication.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/clients")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}
