package llm

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns each chunk from a separate Read call.
type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if c.chunks[0] == "" {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func sseFrame(content string) string {
	b, _ := json.Marshal(openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatCompletionStreamChoiceDelta{Content: content}}},
	})
	return "data: " + string(b) + "\n\n"
}

func drain(t *testing.T, d *StreamDecoder) string {
	t.Helper()
	var sb strings.Builder
	for {
		s, err := d.Next()
		if errors.Is(err, io.EOF) {
			return sb.String()
		}
		require.NoError(t, err)
		sb.WriteString(s)
	}
}

func TestStreamDecoder_SplitAcrossReads(t *testing.T) {
	stream := sseFrame("The ") + sseFrame("answer") + sseFrame(" is 42.") + "data: [DONE]\n\n"

	// every possible two-way split of the stream yields the same text
	for i := 1; i < len(stream); i++ {
		d := NewStreamDecoder(&chunkReader{chunks: []string{stream[:i], stream[i:]}})
		assert.Equal(t, "The answer is 42.", drain(t, d), "split at %d", i)
	}
}

func TestStreamDecoder_DoneStopsReading(t *testing.T) {
	stream := sseFrame("kept") + "data: [DONE]\n" + sseFrame("ignored")
	d := NewStreamDecoder(strings.NewReader(stream))

	assert.Equal(t, "kept", drain(t, d))
	assert.True(t, d.Terminated())
}

func TestStreamDecoder_EOFWithoutDoneIsComplete(t *testing.T) {
	stream := sseFrame("partial ") + sseFrame("answer")
	d := NewStreamDecoder(strings.NewReader(stream))

	assert.Equal(t, "partial answer", drain(t, d))
	assert.False(t, d.Terminated())
}

func TestStreamDecoder_UnterminatedTailLine(t *testing.T) {
	stream := sseFrame("a") + strings.TrimRight(sseFrame("b"), "\n")
	d := NewStreamDecoder(strings.NewReader(stream))

	assert.Equal(t, "ab", drain(t, d))
}

func TestStreamDecoder_MergesSplitPayload(t *testing.T) {
	full := strings.TrimPrefix(strings.TrimSpace(sseFrame("merged")), "data: ")
	half := len(full) / 2
	stream := "data: " + full[:half] + "\n" + "data: " + full[half:] + "\n" + sseFrame("!") + "data: [DONE]\n"

	d := NewStreamDecoder(strings.NewReader(stream))
	assert.Equal(t, "merged!", drain(t, d))
}

func TestStreamDecoder_GarbageSkipped(t *testing.T) {
	stream := ": keep-alive\n\n" +
		"event: message\n" +
		"data: {not json\n" +
		sseFrame("after") +
		"data: {also broken"
	d := NewStreamDecoder(strings.NewReader(stream))

	assert.Equal(t, "after", drain(t, d))
}

func TestStreamDecoder_CRLF(t *testing.T) {
	stream := strings.ReplaceAll(sseFrame("x")+sseFrame("y")+"data: [DONE]\n", "\n", "\r\n")
	d := NewStreamDecoder(strings.NewReader(stream))

	assert.Equal(t, "xy", drain(t, d))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStreamDecoder_ReadError(t *testing.T) {
	d := NewStreamDecoder(failingReader{})
	_, err := d.Next()
	assert.EqualError(t, err, "connection reset")
}
