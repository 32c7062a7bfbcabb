package llm

import (
	"context"
	"io"
)

// Request is one chat-completion call against the gateway.
type Request struct {
	// Operation labels logs and metrics, e.g. "generate".
	Operation   string
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature *float32
}

// Client is the language-model boundary used by the generator, the
// import analyzer and the assistant.
type Client interface {
	// Complete returns the full completion text.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream returns the raw server-sent-event body. Callers wrap it in a
	// StreamDecoder and must close it.
	Stream(ctx context.Context, req Request) (io.ReadCloser, error)
}
