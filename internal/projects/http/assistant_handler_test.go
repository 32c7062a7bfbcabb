package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEWriter_KeepAliveStopsBeforeReturning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	w := &sseWriter{c: c, flusher: c.Writer}

	require.NoError(t, w.data(gin.H{"content": "Hi"}))
	stop := w.keepAlive(context.Background(), time.Millisecond)
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(rec.Body.String()) > len("data: {\"content\":\"Hi\"}\n\n")
	}, time.Second, time.Millisecond)

	stop()
	body := rec.Body.String()
	assert.Contains(t, body, ": keep-alive\n\n")

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, body, rec.Body.String())
}

func TestSSEWriter_KeepAliveWaitsForFirstFrame(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	w := &sseWriter{c: c, flusher: c.Writer}

	stop := w.keepAlive(context.Background(), time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	stop()

	assert.False(t, w.hasStarted())
	assert.Empty(t, rec.Body.String())
}
