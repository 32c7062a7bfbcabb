package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/generator"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

const maxTitleLen = 200

// Drafter produces the initial section drafts for a new project.
type Drafter interface {
	Generate(ctx context.Context, in generator.Input) ([]generator.Draft, error)
}

// ProjectStore is the persistence the service needs for projects.
type ProjectStore interface {
	CreateWithSections(ctx context.Context, ownerID string, in domain.NewProject, sections []domain.NewSection) (*domain.Project, []domain.Section, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Rename(ctx context.Context, ownerID, id, title string) (*domain.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Sessions keeps live editing sessions in step with project changes.
type Sessions interface {
	Drop(ownerID, projectID string)
	Renamed(ownerID, projectID string, p domain.Project)
}

// CreateInput is the user-supplied project context.
type CreateInput struct {
	Title             string
	ProblemStatement  string
	Industry          string
	Timeline          string
	TargetUsers       string
	AdditionalContext string
	Analysis          *documents.Analysis
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo     ProjectStore
	drafter  Drafter
	sessions Sessions
}

// NewProjectService creates a new project service. sessions may be nil.
func NewProjectService(repo ProjectStore, drafter Drafter, sessions Sessions) *ProjectService {
	return &ProjectService{repo: repo, drafter: drafter, sessions: sessions}
}

// Create generates the document first and persists the project with all of
// its sections only when generation succeeded. A failed model call leaves
// no rows behind.
func (s *ProjectService) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Project, []domain.Section, error) {
	in.ProblemStatement = strings.TrimSpace(in.ProblemStatement)
	in.Industry = strings.TrimSpace(in.Industry)
	if in.ProblemStatement == "" {
		return nil, nil, apperr.Invalid("problem statement is required")
	}
	if in.Industry == "" {
		return nil, nil, apperr.Invalid("industry is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, nil, apperr.Invalid("title is too long")
	}

	log := logging.Op(ctx, "create_project")

	drafts, err := s.drafter.Generate(ctx, generator.Input{
		ProblemStatement:  in.ProblemStatement,
		Industry:          in.Industry,
		Timeline:          in.Timeline,
		TargetUsers:       in.TargetUsers,
		AdditionalContext: in.AdditionalContext,
		Analysis:          in.Analysis,
	})
	if err != nil {
		log.Warn("generation failed, nothing persisted", zap.Error(err))
		return nil, nil, err
	}

	rows := make([]domain.NewSection, 0, len(drafts))
	for _, d := range drafts {
		rows = append(rows, domain.NewSection{Title: d.Title, Content: d.Content, OrderIndex: d.OrderIndex})
	}

	p, secs, err := s.repo.CreateWithSections(ctx, ownerID, domain.NewProject{
		Title:             in.Title,
		ProblemStatement:  in.ProblemStatement,
		Industry:          in.Industry,
		Timeline:          in.Timeline,
		TargetUsers:       in.TargetUsers,
		AdditionalContext: in.AdditionalContext,
	}, rows)
	if err != nil {
		log.Error("persist project failed", zap.Error(err))
		return nil, nil, err
	}

	log.Info("project created", zap.String("project_id", p.ID), zap.Int("sections", len(secs)))
	return p, secs, nil
}

// List returns all projects for a user
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Rename updates a project's title and the open editing session, so reads
// and exports show the new title at once.
func (s *ProjectService) Rename(ctx context.Context, ownerID, id, title string) (*domain.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if len(title) > maxTitleLen {
		return nil, apperr.Invalid("title is too long")
	}
	p, err := s.repo.Rename(ctx, ownerID, id, title)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		s.sessions.Renamed(ownerID, id, *p)
	}
	return p, nil
}

// Delete removes the project and drops its editing session without
// flushing it.
func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if s.sessions != nil {
		s.sessions.Drop(ownerID, id)
	}
	return nil
}
