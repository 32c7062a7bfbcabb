package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

const maxIDAttempts = 5

const projectColumns = `id, owner_id::text, title, problem_statement, industry, timeline, target_users, additional_context, created_at, updated_at`

// ProjectRepository provides persistence operations for projects.
// Every statement is scoped to the owning user.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p                              domain.Project
		timeline, target, additionalCx sql.NullString
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.ProblemStatement, &p.Industry,
		&timeline, &target, &additionalCx, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Timeline = nullable(timeline)
	p.TargetUsers = nullable(target)
	p.AdditionalContext = nullable(additionalCx)
	return &p, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// CreateWithSections inserts the project and all of its sections in one
// transaction. A project id collision retries with a fresh id.
func (r *ProjectRepository) CreateWithSections(ctx context.Context, ownerID string, in domain.NewProject, sections []domain.NewSection) (*domain.Project, []domain.Section, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, nil, fmt.Errorf("owner id required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = domain.DefaultTitle
	}

	for i := 0; i < maxIDAttempts; i++ {
		id, err := domain.NewProjectID()
		if err != nil {
			return nil, nil, err
		}

		p, secs, err := r.createOnce(ctx, id, ownerID, title, in, sections)
		if err == nil {
			return p, secs, nil
		}
		// unique violation on id → retry
		if isUniqueViolation(err) {
			continue
		}
		return nil, nil, wrap("create project", err)
	}

	return nil, nil, fmt.Errorf("failed to generate unique project id")
}

func (r *ProjectRepository) createOnce(ctx context.Context, id, ownerID, title string, in domain.NewProject, sections []domain.NewSection) (*domain.Project, []domain.Section, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanProject(tx.QueryRowContext(ctx, `
INSERT INTO projects (id, owner_id, title, problem_statement, industry, timeline, target_users, additional_context)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+projectColumns+`;
`, id, ownerID, title, strings.TrimSpace(in.ProblemStatement), strings.TrimSpace(in.Industry),
		domain.OptionalText(in.Timeline), domain.OptionalText(in.TargetUsers), domain.OptionalText(in.AdditionalContext)))
	if err != nil {
		return nil, nil, err
	}

	out := make([]domain.Section, 0, len(sections))
	for _, s := range sections {
		sec := domain.Section{ID: uuid.NewString(), ProjectID: p.ID, Title: s.Title, Content: s.Content, OrderIndex: s.OrderIndex}
		err := tx.QueryRowContext(ctx, `
INSERT INTO sections (id, project_id, title, content, order_index)
VALUES ($1, $2, $3, $4, $5)
RETURNING is_visible, created_at, updated_at;
`, sec.ID, sec.ProjectID, sec.Title, sec.Content, sec.OrderIndex).Scan(&sec.IsVisible, &sec.CreatedAt, &sec.UpdatedAt)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, sec)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return p, out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `
SELECT `+projectColumns+`
FROM projects
WHERE owner_id = $1 AND id = $2;
`, ownerID, id))
	if err != nil {
		return nil, wrap("get project", err)
	}
	return p, nil
}

// List returns the owner's projects, newest first.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+projectColumns+`
FROM projects
WHERE owner_id = $1
ORDER BY created_at DESC;
`, ownerID)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap("list projects", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list projects", err)
	}
	return out, nil
}

func (r *ProjectRepository) Rename(ctx context.Context, ownerID, id, title string) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `
UPDATE projects
SET title = $3, updated_at = now()
WHERE owner_id = $1 AND id = $2
RETURNING `+projectColumns+`;
`, ownerID, id, title))
	if err != nil {
		return nil, wrap("rename project", err)
	}
	return p, nil
}

// Delete removes the project; its sections cascade.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE owner_id = $1 AND id = $2;`, ownerID, id)
	if err != nil {
		return wrap("delete project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete project", err)
	}
	if n == 0 {
		return wrap("delete project", domain.ErrNotFound)
	}
	return nil
}
