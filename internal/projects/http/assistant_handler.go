package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/assistant"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
)

const keepAliveEvery = 15 * time.Second

type askReq struct {
	Question  string `json:"question" binding:"required"`
	SectionID string `json:"section_id"`
}

// sseWriter serializes frames from the relay and the keep-alive ticker.
type sseWriter struct {
	mu      sync.Mutex
	c       *gin.Context
	flusher http.Flusher
	started bool
}

func (w *sseWriter) start() {
	if w.started {
		return
	}
	w.started = true
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.c.Status(http.StatusOK)
}

func (w *sseWriter) frame(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.start()
	if _, err := fmt.Fprint(w.c.Writer, s); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

func (w *sseWriter) data(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.frame("data: " + string(b) + "\n\n")
}

func (w *sseWriter) hasStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// keepAlive writes a comment frame every interval once the stream has
// started. The returned stop waits for the ticker goroutine to exit, so no
// frame is written after it returns.
func (w *sseWriter) keepAlive(ctx context.Context, every time.Duration) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if w.hasStarted() {
					_ = w.frame(": keep-alive\n\n")
				}
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

// ask relays the assistant's answer as server-sent events. Failures before
// the first frame are ordinary JSON errors; later ones become an error event.
func (h *Handler) ask(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "question is required")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	visible := s.VisibleSections()
	ctxSections := make([]assistant.Section, 0, len(visible))
	for _, sec := range visible {
		ctxSections = append(ctxSections, assistant.Section{Title: sec.Title, Content: sec.Content})
	}
	areq := assistant.Request{
		DocumentContext: assistant.BuildDocumentContext(ctxSections),
		Question:        req.Question,
	}

	target := req.SectionID
	if target == "" {
		target = s.ActiveID()
	}
	for _, sec := range s.Sections() {
		if sec.ID == target {
			areq.SectionTitle = sec.Title
			areq.SectionContent = sec.Content
		}
	}

	ctx := c.Request.Context()
	w := &sseWriter{c: c, flusher: flusher}

	stop := w.keepAlive(ctx, keepAliveEvery)
	defer stop()

	err := h.assistant.Ask(ctx, areq, func(delta string) error {
		return w.data(gin.H{"content": delta})
	})
	if err != nil {
		if !w.hasStarted() {
			fail(c, "assist", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		_, msg := apperr.Status(err)
		logging.Op(ctx, "assist").Warn("stream aborted", zap.Error(err))
		b, _ := json.Marshal(gin.H{"ok": false, "error": msg})
		_ = w.frame("event: error\ndata: " + string(b) + "\n\n")
		return
	}

	_ = w.frame("data: [DONE]\n\n")
}
