package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers hearing routes. checkLimiter throttles the dry-run conflict check.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc, checkLimiter gin.HandlerFunc) {
	group := g.Group("/hearings")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/today", h.ListToday)
		group.GET("/case/:caseId", h.ListByCase)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/conflicts/check", checkLimiter, h.CheckConflicts)
		group.PUT("/:id", h.Update)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}
