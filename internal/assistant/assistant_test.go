package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm/llmtest"
)

func frame(content string) string {
	b, _ := json.Marshal(openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatCompletionStreamChoiceDelta{Content: content}}},
	})
	return "data: " + string(b) + "\n\n"
}

func TestBuildDocumentContext(t *testing.T) {
	got := BuildDocumentContext([]Section{
		{Title: "Problem Statement", Content: "<p>a</p>"},
		{Title: "Key Findings", Content: "<p>b</p>"},
	})
	assert.Equal(t, "## Problem Statement\n<p>a</p>\n\n## Key Findings\n<p>b</p>", got)
	assert.Equal(t, "", BuildDocumentContext(nil))
}

func TestAsk_RelaysChunks(t *testing.T) {
	fake := &llmtest.Fake{StreamBody: frame("<p>Maya") + frame(" churns") + frame(" first.</p>") + "data: [DONE]\n\n"}
	svc := New(fake, 0)

	var got []string
	err := svc.Ask(context.Background(), Request{
		DocumentContext: "## Personas\nMaya",
		SectionTitle:    "Key Findings",
		SectionContent:  "<p>tbd</p>",
		Question:        "Who churns first?",
	}, func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"<p>Maya", " churns", " first.</p>"}, got)

	req := fake.Last()
	assert.Equal(t, "assist", req.Operation)
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Contains(t, req.User, "## Personas\nMaya")
	assert.Contains(t, req.User, `"Key Findings"`)
	assert.True(t, strings.HasSuffix(req.User, "Question: Who churns first?"))
}

func TestAsk_NoDoneStillComplete(t *testing.T) {
	svc := New(&llmtest.Fake{StreamBody: frame("partial") + frame(" answer")}, 0)

	var sb strings.Builder
	err := svc.Ask(context.Background(), Request{Question: "q"}, func(s string) error {
		sb.WriteString(s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "partial answer", sb.String())
}

func TestAsk_BlankQuestion(t *testing.T) {
	fake := &llmtest.Fake{}
	err := New(fake, 0).Ask(context.Background(), Request{Question: " "}, func(string) error { return nil })
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 0, fake.Calls())
}

func TestAsk_UpstreamError(t *testing.T) {
	fake := &llmtest.Fake{Err: fmt.Errorf("gw: %w", apperr.ErrUpstreamQuotaExhausted)}
	err := New(fake, 0).Ask(context.Background(), Request{Question: "q"}, func(string) error { return nil })
	assert.ErrorIs(t, err, apperr.ErrUpstreamQuotaExhausted)
}

func TestAsk_EmitErrorStops(t *testing.T) {
	svc := New(&llmtest.Fake{StreamBody: frame("a") + frame("b") + frame("c")}, 0)
	stop := errors.New("client gone")

	calls := 0
	err := svc.Ask(context.Background(), Request{Question: "q"}, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
