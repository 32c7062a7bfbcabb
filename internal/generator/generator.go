package generator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/observability"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

// Input describes the project a document is generated for.
type Input struct {
	ProblemStatement  string
	Industry          string
	Timeline          string
	TargetUsers       string
	AdditionalContext string
	Analysis          *documents.Analysis
}

type Generator struct {
	client    llm.Client
	registry  *templates.Registry
	maxTokens int
	metrics   *observability.Metrics
}

func New(client llm.Client, registry *templates.Registry, maxTokens int, metrics *observability.Metrics) *Generator {
	if maxTokens <= 0 {
		maxTokens = 16000
	}
	return &Generator{client: client, registry: registry, maxTokens: maxTokens, metrics: metrics}
}

// Plan returns the section plan for in: the industry template plus any
// sections suggested by an import analysis.
func (g *Generator) Plan(in Input) templates.Plan {
	plan := g.registry.Plan(strings.TrimSpace(in.Industry))
	if in.Analysis != nil {
		for _, s := range in.Analysis.SuggestedSections {
			plan = plan.With(s.Title, s.Reason)
		}
	}
	return plan
}

// Generate makes one model call and returns one draft per planned title.
// Upstream failures are returned; an unparseable reply is not an error.
func (g *Generator) Generate(ctx context.Context, in Input) ([]Draft, error) {
	if strings.TrimSpace(in.ProblemStatement) == "" {
		return nil, apperr.Invalid("problem statement is required")
	}
	if strings.TrimSpace(in.Industry) == "" {
		return nil, apperr.Invalid("industry is required")
	}

	log := logging.Op(ctx, "generate").With(zap.String("industry", in.Industry))
	plan := g.Plan(in)

	reply, err := g.client.Complete(ctx, llm.Request{
		Operation: "generate",
		System:    systemPrompt,
		User:      buildPrompt(in, plan),
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	drafts, placeholders := Reconcile(plan, reply, in.ProblemStatement)
	g.metrics.Generated(len(drafts), placeholders)

	if placeholders > 0 {
		log.Warn("sections filled with placeholders", zap.Int("placeholders", placeholders), zap.Int("sections", len(drafts)))
	}
	log.Info("document generated", zap.Int("sections", len(drafts)), zap.Bool("imported", in.Analysis != nil))
	return drafts, nil
}
