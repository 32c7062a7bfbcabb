package repository

import (
	"context"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

// EditorStorage is what an editing session reads from and writes to: the
// project lookup plus the section statements.
type EditorStorage struct {
	*SectionRepository
	projects *ProjectRepository
}

func NewEditorStorage(projects *ProjectRepository, sections *SectionRepository) *EditorStorage {
	return &EditorStorage{SectionRepository: sections, projects: projects}
}

func (s *EditorStorage) Get(ctx context.Context, ownerID, projectID string) (*domain.Project, error) {
	return s.projects.Get(ctx, ownerID, projectID)
}
