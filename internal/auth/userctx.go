package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/users"
)

// UserEnsurer creates or refreshes the users row for a Firebase identity.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// WithUser maps the authenticated Firebase uid to a users row and stores
// its id under CtxUserDBID. It must run after an auth middleware.
func WithUser(userRepo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			status, msg := apperr.Status(apperr.ErrUnauthorized)
			c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
			return
		}

		uid, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
		})
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("ensure user failed", zap.String("firebase_uid", fuid), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load user"})
			return
		}

		c.Set(CtxUserDBID, uid)
		c.Next()
	}
}
