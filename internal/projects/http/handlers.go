package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/service"
)

type createReq struct {
	Title             string              `json:"title"`
	ProblemStatement  string              `json:"problem_statement" binding:"required"`
	Industry          string              `json:"industry" binding:"required"`
	Timeline          string              `json:"timeline"`
	TargetUsers       string              `json:"target_users"`
	AdditionalContext string              `json:"additional_context"`
	Analysis          *documents.Analysis `json:"analysis"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "problem_statement and industry are required")
		return
	}

	p, secs, err := h.projects.Create(c.Request.Context(), owner(c), service.CreateInput{
		Title:             req.Title,
		ProblemStatement:  req.ProblemStatement,
		Industry:          req.Industry,
		Timeline:          req.Timeline,
		TargetUsers:       req.TargetUsers,
		AdditionalContext: req.AdditionalContext,
		Analysis:          req.Analysis,
	})
	if err != nil {
		fail(c, "create_project", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p, "sections": secs})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), owner(c))
	if err != nil {
		fail(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

// get loads the project into an editing session and returns its live state.
func (h *Handler) get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"project":           s.Project(),
		"sections":          s.Sections(),
		"active_section_id": s.ActiveID(),
		"saving":            s.Saving(),
		"dirty":             s.Dirty(),
	})
}

type renameReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Handler) rename(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	p, err := h.projects.Rename(c.Request.Context(), owner(c), c.Param("id"), req.Title)
	if err != nil {
		fail(c, "rename_project", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		fail(c, "delete_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
