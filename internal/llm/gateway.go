package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/observability"
)

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// HTTPClient is used for streaming requests. Zero value means no timeout.
	HTTPClient *http.Client
}

// Gateway talks to an OpenAI-compatible chat-completions endpoint.
type Gateway struct {
	client  *openai.Client
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	metrics *observability.Metrics
}

func NewGateway(cfg GatewayConfig, metrics *observability.Metrics) *Gateway {
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 0}
	}
	conf.HTTPClient = hc

	return &Gateway{
		client:  openai.NewClientWithConfig(conf),
		http:    hc,
		baseURL: conf.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		metrics: metrics,
	}
}

func (g *Gateway) chatRequest(req Request) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = g.model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	out := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	return out
}

func (g *Gateway) Complete(ctx context.Context, req Request) (out string, err error) {
	started := time.Now()
	log := logging.Op(ctx, req.Operation)
	defer func() {
		g.metrics.ObserveUpstream(req.Operation, started, outcome(err))
		if err != nil {
			log.Warn("llm completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		}
	}()

	if g.apiKey == "" {
		return "", fmt.Errorf("%w: LLM_API_KEY is not set", apperr.ErrMissingConfiguration)
	}

	resp, err := g.client.CreateChatCompletion(ctx, g.chatRequest(req))
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", apperr.ErrUpstreamUnavailable)
	}

	log.Debug("llm completion",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// Stream posts a streaming chat request and hands back the SSE body
// unread so that StreamDecoder controls the framing.
func (g *Gateway) Stream(ctx context.Context, req Request) (body io.ReadCloser, err error) {
	started := time.Now()
	defer func() {
		g.metrics.ObserveUpstream(req.Operation, started, outcome(err))
		if err != nil {
			logging.Op(ctx, req.Operation).Warn("llm stream failed", zap.Error(err))
		}
	}()

	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: LLM_API_KEY is not set", apperr.ErrMissingConfiguration)
	}

	chatReq := g.chatRequest(req)
	chatReq.Stream = true
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal stream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fromStatus(resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(snippet))))
	}
	return resp.Body, nil
}
