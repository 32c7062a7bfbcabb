package http

import "github.com/gin-gonic/gin"

// Register attaches the research document routes to an authenticated
// /api/v1 group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/templates", h.listTemplates)
	rg.POST("/documents/analyze", h.aiLimit, h.analyze)

	p := rg.Group("/projects")
	p.GET("", h.list)
	p.POST("", h.aiLimit, h.create)
	p.GET("/:id", h.get)
	p.PATCH("/:id", h.rename)
	p.DELETE("/:id", h.delete)

	p.PUT("/:id/active", h.setActive)
	p.POST("/:id/sections", h.addSection)
	p.PUT("/:id/sections/order", h.reorder)
	p.PATCH("/:id/sections/:section_id", h.editSection)
	p.POST("/:id/sections/:section_id/insert", h.insertContent)
	p.DELETE("/:id/sections/:section_id", h.deleteSection)
	p.POST("/:id/flush", h.flush)

	p.POST("/:id/assistant", h.aiLimit, h.ask)
	p.GET("/:id/export", h.export)
}
