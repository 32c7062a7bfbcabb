package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/auth"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/editor"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
)

// fail maps err to a status and a short message. Internal detail is logged,
// never returned.
func fail(c *gin.Context, op string, err error) {
	status, msg := apperr.Status(err)
	log := logging.Op(c.Request.Context(), op)
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed", zap.Error(err))
	case apperr.IsUpstream(err):
		log.Warn("upstream rejected request", zap.Error(err))
	}
	c.JSON(status, gin.H{"ok": false, "error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

func owner(c *gin.Context) string {
	return auth.UserDBID(c)
}

// session returns the live editing session for the :id project.
func (h *Handler) session(c *gin.Context) (*editor.Store, bool) {
	s, err := h.sessions.Open(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		fail(c, "open_session", err)
		return nil, false
	}
	return s, true
}

// detached keeps request-scoped values but outlives the request.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
