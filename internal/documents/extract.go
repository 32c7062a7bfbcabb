package documents

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
)

// Extraction bounds. Hitting any of them stops the scan and keeps what was
// gathered so far.
const (
	maxLiteralMatches = 5000
	maxStreams        = 500
	maxExtractedChars = 50000
	extractionBudget  = 5 * time.Second
	maxAnalyzedChars  = 15000
	minDocxChars      = 50

	docxMarker = "word/document.xml"
)

var (
	pdfLiteral   = regexp.MustCompile(`\(([^()]*)\)`)
	pdfStream    = regexp.MustCompile(`(?s)stream\r?\n(.*?)\r?\nendstream`)
	markupTag    = regexp.MustCompile(`<[^>]*>`)
	whitespace   = regexp.MustCompile(`\s+`)
	printableTok = regexp.MustCompile(`^[A-Za-z0-9][\x21-\x7E]*$`)
	wordTok      = regexp.MustCompile(`^[A-Za-z]{2,}[.,;:!?]?$`)
)

type extractor struct {
	now      func() time.Time
	deadline time.Time
	out      strings.Builder
}

func newExtractor(now func() time.Time) *extractor {
	return &extractor{now: now, deadline: now().Add(extractionBudget)}
}

func (e *extractor) expired() bool {
	return e.now().After(e.deadline)
}

// add appends s and reports whether there is room for more.
func (e *extractor) add(s string) bool {
	room := maxExtractedChars - e.out.Len()
	if room <= 0 {
		return false
	}
	s = strings.ToValidUTF8(s, "")
	if e.out.Len() > 0 {
		e.out.WriteByte(' ')
		room--
	}
	s = truncate(s, room)
	e.out.WriteString(s)
	return e.out.Len() < maxExtractedChars
}

// extractPDF scrapes literal text runs and uncompressed content streams.
func extractPDF(filename string, data []byte, now func() time.Time) string {
	e := newExtractor(now)

	for i, m := range pdfLiteral.FindAllSubmatch(data, maxLiteralMatches) {
		if i%64 == 0 && e.expired() {
			break
		}
		run := strings.TrimSpace(string(m[1]))
		if len(run) <= 2 || !hasLetter(run) {
			continue
		}
		if !e.add(run) {
			break
		}
	}

	if e.out.Len() < maxExtractedChars && !e.expired() {
		for _, m := range pdfStream.FindAllSubmatch(data, maxStreams) {
			if e.expired() {
				break
			}
			text := proseFromStream(m[1])
			if text == "" {
				continue
			}
			if !e.add(text) {
				break
			}
		}
	}

	text := strings.TrimSpace(e.out.String())
	if text == "" {
		return placeholderText(filename)
	}
	return text
}

// proseFromStream keeps word-like tokens from a stream body. Compressed
// streams yield almost none and are discarded.
func proseFromStream(body []byte) string {
	printable := bytes.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 0x20 && r < 0x7F) {
			return r
		}
		return ' '
	}, body)

	var words []string
	for _, tok := range strings.Fields(string(printable)) {
		if wordTok.MatchString(tok) {
			words = append(words, tok)
		}
	}
	if len(words) < 3 {
		return ""
	}
	return strings.Join(words, " ")
}

// extractDOCX strips markup from the raw container bytes.
func extractDOCX(filename string, data []byte, now func() time.Time) (string, error) {
	if !bytes.Contains(data, []byte(docxMarker)) {
		return "", fmt.Errorf("%w: %s is not a Word document", apperr.ErrInvalidFileFormat, filename)
	}

	e := newExtractor(now)
	stripped := markupTag.ReplaceAll(data, []byte(" "))
	collapsed := whitespace.ReplaceAllString(string(stripped), " ")

	for i, tok := range strings.Split(collapsed, " ") {
		if i%256 == 0 && e.expired() {
			break
		}
		if tok == "" || !printableTok.MatchString(tok) {
			continue
		}
		if !e.add(tok) {
			break
		}
	}

	text := strings.TrimSpace(e.out.String())
	if len(text) < minDocxChars {
		return placeholderText(filename), nil
	}
	return text, nil
}

func placeholderText(filename string) string {
	return fmt.Sprintf("Document: %s. The text could not be extracted automatically; infer what you can from the file name.", filename)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
