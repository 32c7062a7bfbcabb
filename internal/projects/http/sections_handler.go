package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
)

type activeReq struct {
	SectionID string `json:"section_id" binding:"required"`
}

func (h *Handler) setActive(c *gin.Context) {
	var req activeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "section_id is required")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	sec, err := s.SetActiveSection(req.SectionID)
	if err != nil {
		fail(c, "set_active_section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": sec})
}

type editReq struct {
	Content *string `json:"content" binding:"required"`
}

func (h *Handler) editSection(c *gin.Context) {
	var req editReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	sec, err := s.EditContent(c.Param("section_id"), *req.Content)
	if err != nil {
		fail(c, "edit_section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": sec, "saving": s.Saving()})
}

type insertReq struct {
	HTML string `json:"html" binding:"required"`
}

func (h *Handler) insertContent(c *gin.Context) {
	var req insertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "html is required")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	sec, err := s.InsertGeneratedContent(c.Param("section_id"), req.HTML)
	if err != nil {
		fail(c, "insert_content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": sec})
}

type addSectionReq struct {
	Title string `json:"title"`
}

func (h *Handler) addSection(c *gin.Context) {
	var req addSectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	sec, err := s.AddSection(c.Request.Context(), req.Title)
	if err != nil {
		fail(c, "add_section", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "section": sec})
}

func (h *Handler) deleteSection(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.DeleteSection(c.Request.Context(), c.Param("section_id")); err != nil {
		fail(c, "delete_section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "active_section_id": s.ActiveID()})
}

type reorderReq struct {
	SectionIDs []string `json:"section_ids" binding:"required"`
}

func (h *Handler) reorder(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "section_ids is required")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	secs, err := s.Reorder(c.Request.Context(), req.SectionIDs)
	if err != nil {
		fail(c, "reorder_sections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sections": secs})
}

func (h *Handler) flush(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Flush(c.Request.Context()); err != nil {
		logging.Op(c.Request.Context(), "flush").Error("flush failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to save changes", "dirty": s.Dirty()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dirty": s.Dirty()})
}
