package documents

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

// Upload is one file handed to the analyzer.
type Upload struct {
	Filename string
	Data     []byte
}

// Analyzer turns an uploaded PDF or DOCX into an Analysis.
type Analyzer struct {
	client    llm.Client
	registry  *templates.Registry
	cache     Cache
	maxTokens int
	now       func() time.Time
}

type Option func(*Analyzer)

func WithCache(c Cache) Option {
	return func(a *Analyzer) { a.cache = c }
}

func WithMaxTokens(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithClock replaces the clock used for the extraction time budget.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(client llm.Client, registry *templates.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:    client,
		registry:  registry,
		maxTokens: 4000,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze validates the upload, scrapes its text and asks the model to
// classify it. Once validation and the model call succeed, it always
// returns an Analysis.
func (a *Analyzer) Analyze(ctx context.Context, up Upload) (*Analysis, error) {
	log := logging.Op(ctx, "analyze").With(zap.String("filename", up.Filename), zap.Int("bytes", len(up.Data)))

	format, err := Validate(up.Filename, up.Data)
	if err != nil {
		log.Info("upload rejected", zap.Error(err))
		return nil, err
	}

	digest := Digest(up.Data)
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, digest)
		if err != nil {
			log.Warn("analysis cache read failed", zap.Error(err))
		} else if ok {
			log.Debug("analysis cache hit", zap.String("digest", digest))
			return cached, nil
		}
	}

	text, err := a.extract(format, up)
	if err != nil {
		log.Info("upload rejected", zap.Error(err))
		return nil, err
	}
	text = truncate(text, maxAnalyzedChars)

	reply, err := a.client.Complete(ctx, llm.Request{
		Operation: "analyze",
		System:    analysisSystemPrompt,
		User:      analysisPrompt(up.Filename, text, a.registry.Industries()),
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	analysis, parsed := ParseAnalysis(reply, a.registry)
	if !parsed {
		log.Warn("model reply was not valid JSON, using default analysis", zap.Int("reply_len", len(reply)))
	}

	if a.cache != nil && parsed {
		if err := a.cache.Set(ctx, digest, analysis); err != nil {
			log.Warn("analysis cache write failed", zap.Error(err))
		}
	}

	log.Info("document analyzed",
		zap.String("format", format.String()),
		zap.String("industry", analysis.DetectedIndustry),
		zap.Int("existing_sections", len(analysis.ExistingSections)),
		zap.Int("suggested_sections", len(analysis.SuggestedSections)),
	)
	return analysis, nil
}

func (a *Analyzer) extract(format Format, up Upload) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDF(up.Filename, up.Data, a.now), nil
	default:
		return extractDOCX(up.Filename, up.Data, a.now)
	}
}
