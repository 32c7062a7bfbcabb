package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
)

const systemPrompt = `You are a research assistant helping a user refine a research document.
Answer the question using the document for context. Be specific and cite details from the document by name.
Format the answer as HTML using only <p>, <strong>, <em>, <ul>, <ol> and <li> so it can be inserted into a section. Never use markdown.`

// Request is one question about a document.
type Request struct {
	DocumentContext string
	SectionTitle    string
	SectionContent  string
	Question        string
}

// Section is the title and content the document context is built from.
type Section struct {
	Title   string
	Content string
}

// BuildDocumentContext serializes sections in order.
func BuildDocumentContext(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n%s", s.Title, s.Content)
	}
	return b.String()
}

type Service struct {
	client    llm.Client
	maxTokens int
}

func New(client llm.Client, maxTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Service{client: client, maxTokens: maxTokens}
}

// Ask streams the answer to emit chunk by chunk. Nothing is stored. A
// stream that ends without the [DONE] sentinel is treated as complete.
func (s *Service) Ask(ctx context.Context, req Request, emit func(string) error) error {
	if strings.TrimSpace(req.Question) == "" {
		return apperr.Invalid("question is required")
	}

	log := logging.Op(ctx, "assist")
	started := time.Now()

	body, err := s.client.Stream(ctx, llm.Request{
		Operation: "assist",
		System:    systemPrompt,
		User:      userPrompt(req),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return err
	}
	defer body.Close()

	dec := llm.NewStreamDecoder(body)
	chunks, size := 0, 0
	for {
		delta, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("assistant stream interrupted", zap.Error(err), zap.Int("chunks", chunks))
			return fmt.Errorf("%w: stream interrupted: %v", apperr.ErrUpstreamUnavailable, err)
		}
		if err := emit(delta); err != nil {
			return err
		}
		chunks++
		size += len(delta)
	}

	log.Info("assistant answered",
		zap.Int("chunks", chunks),
		zap.Int("chars", size),
		zap.Bool("terminated", dec.Terminated()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func userPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Research document:\n")
	b.WriteString(req.DocumentContext)
	if t := strings.TrimSpace(req.SectionTitle); t != "" {
		fmt.Fprintf(&b, "\n\nThe user is editing the section %q:\n%s", t, req.SectionContent)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(req.Question))
	return b.String()
}
