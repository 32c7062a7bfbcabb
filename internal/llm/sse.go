package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
	readSize     = 4096
	// maxPending bounds a payload that keeps failing to decode.
	maxPending = 1 << 20
)

// StreamDecoder turns an SSE chat-completion body into content deltas.
//
// An incomplete trailing line is held until the next read. A data payload
// that does not decode is held back and merged with the next payload, so a
// JSON object split across two frames still comes through. [DONE] ends the
// stream; EOF without it also ends the stream normally.
type StreamDecoder struct {
	r       io.Reader
	buf     []byte
	pending string
	queue   []string
	done    bool
	eof     bool
	sawDone bool
}

func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{r: r}
}

// Next returns the next non-empty content delta, or io.EOF once the stream
// is finished.
func (d *StreamDecoder) Next() (string, error) {
	for {
		if len(d.queue) > 0 {
			s := d.queue[0]
			d.queue = d.queue[1:]
			return s, nil
		}
		if d.done {
			return "", io.EOF
		}
		if d.eof {
			d.finish()
			continue
		}
		if err := d.fill(); err != nil {
			return "", err
		}
	}
}

// Terminated reports whether the upstream sent the [DONE] sentinel.
func (d *StreamDecoder) Terminated() bool {
	return d.sawDone
}

func (d *StreamDecoder) fill() error {
	chunk := make([]byte, readSize)
	n, err := d.r.Read(chunk)
	if n > 0 {
		d.buf = append(d.buf, chunk[:n]...)
		d.drainLines()
	}
	if errors.Is(err, io.EOF) {
		d.eof = true
		return nil
	}
	return err
}

func (d *StreamDecoder) drainLines() {
	for !d.done {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return
		}
		line := string(d.buf[:idx])
		d.buf = d.buf[idx+1:]
		d.handleLine(line)
	}
}

// finish processes the unterminated tail after EOF. A payload still held
// back at this point is dropped.
func (d *StreamDecoder) finish() {
	if len(d.buf) > 0 && !d.done {
		tail := string(d.buf)
		d.buf = nil
		d.handleLine(tail)
	}
	d.pending = ""
	d.done = true
}

func (d *StreamDecoder) handleLine(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, dataPrefix) {
		return
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == doneSentinel {
		d.sawDone = true
		d.done = true
		return
	}
	if payload == "" {
		return
	}

	if d.pending != "" {
		merged := d.pending + payload
		if content, ok := decodeDelta(merged); ok {
			d.pending = ""
			d.push(content)
			return
		}
		if content, ok := decodeDelta(payload); ok {
			d.pending = ""
			d.push(content)
			return
		}
		if len(merged) > maxPending {
			d.pending = ""
			return
		}
		d.pending = merged
		return
	}

	if content, ok := decodeDelta(payload); ok {
		d.push(content)
		return
	}
	d.pending = payload
}

func (d *StreamDecoder) push(content string) {
	if content != "" {
		d.queue = append(d.queue, content)
	}
}

func decodeDelta(payload string) (string, bool) {
	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", true
	}
	return chunk.Choices[0].Delta.Content, true
}
