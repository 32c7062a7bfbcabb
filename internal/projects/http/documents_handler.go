package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
)

// multipartOverhead leaves room for boundaries and part headers.
const multipartOverhead = 1 << 20

type templateView struct {
	Industry string   `json:"industry"`
	Sections []string `json:"sections"`
}

func (h *Handler) listTemplates(c *gin.Context) {
	out := make([]templateView, 0, len(h.templates.Industries()))
	for _, ind := range h.templates.Industries() {
		out = append(out, templateView{Industry: ind, Sections: h.templates.SectionsFor(ind)})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": out})
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, documents.MaxUploadBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, "analyze_document", apperr.ErrFileTooLarge)
			return
		}
		badRequest(c, "missing file")
		return
	}
	if fh.Size > documents.MaxUploadBytes {
		fail(c, "analyze_document", apperr.ErrFileTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "unreadable file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, documents.MaxUploadBytes+1))
	if err != nil {
		badRequest(c, "unreadable file")
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), documents.Upload{Filename: fh.Filename, Data: data})
	if err != nil {
		fail(c, "analyze_document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "analysis": analysis})
}
