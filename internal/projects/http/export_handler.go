package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/export"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
)

const archiveTimeout = 10 * time.Second

// export renders the live session to PDF. Pending edits are flushed first;
// a failed flush does not block the download. Archiving is best effort.
func (h *Handler) export(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	log := logging.Op(ctx, "export")

	if err := s.Flush(ctx); err != nil {
		log.Warn("flush before export failed", zap.Error(err))
	}

	project := s.Project()
	pdf, err := h.renderer.Render(export.Document{Project: project, Sections: s.Sections()})
	if err != nil {
		fail(c, "export", err)
		return
	}
	filename := export.Filename(project.Title)

	if h.archive != nil {
		actx, cancel := context.WithTimeout(detached(ctx), archiveTimeout)
		key, err := h.archive.Put(actx, owner(c), project.ID, filename, export.ContentType, pdf)
		cancel()
		if err != nil {
			log.Warn("archive export failed", zap.Error(err))
		} else {
			log.Info("export archived", zap.String("key", key))
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, pdf)
}
