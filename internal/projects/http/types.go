package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/assistant"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/editor"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/export"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
)

// Projects is the project lifecycle the handlers drive.
type Projects interface {
	Create(ctx context.Context, ownerID string, in service.CreateInput) (*domain.Project, []domain.Section, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Rename(ctx context.Context, ownerID, id, title string) (*domain.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type Analyzer interface {
	Analyze(ctx context.Context, up documents.Upload) (*documents.Analysis, error)
}

type Assistant interface {
	Ask(ctx context.Context, req assistant.Request, emit func(string) error) error
}

// Archiver keeps a copy of every exported file.
type Archiver interface {
	Put(ctx context.Context, ownerID, projectID, filename, contentType string, body []byte) (string, error)
}

// Deps bundles what the handlers need. Archive and AILimit are optional.
type Deps struct {
	Projects  Projects
	Sessions  *editor.Registry
	Analyzer  Analyzer
	Assistant Assistant
	Templates *templates.Registry
	Renderer  *export.Renderer
	Archive   Archiver
	AILimit   gin.HandlerFunc
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects  Projects
	sessions  *editor.Registry
	analyzer  Analyzer
	assistant Assistant
	templates *templates.Registry
	renderer  *export.Renderer
	archive   Archiver
	aiLimit   gin.HandlerFunc
}

func New(d Deps) *Handler {
	h := &Handler{
		projects:  d.Projects,
		sessions:  d.Sessions,
		analyzer:  d.Analyzer,
		assistant: d.Assistant,
		templates: d.Templates,
		renderer:  d.Renderer,
		archive:   d.Archive,
		aiLimit:   d.AILimit,
	}
	if h.aiLimit == nil {
		h.aiLimit = func(c *gin.Context) { c.Next() }
	}
	if h.renderer == nil {
		h.renderer = export.NewRenderer()
	}
	return h
}
