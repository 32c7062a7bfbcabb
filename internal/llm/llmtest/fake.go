// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
)

// Fake returns canned replies and records every request.
type Fake struct {
	mu         sync.Mutex
	Reply      string
	Err        error
	StreamBody string
	requests   []llm.Request
}

func (f *Fake) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *Fake) Stream(_ context.Context, req llm.Request) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return io.NopCloser(strings.NewReader(f.StreamBody)), nil
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Last returns the most recent request.
func (f *Fake) Last() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return llm.Request{}
	}
	return f.requests[len(f.requests)-1]
}
