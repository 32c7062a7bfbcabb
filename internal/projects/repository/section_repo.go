package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

const sectionColumns = `s.id::text, s.project_id, s.title, s.content, s.order_index, s.is_visible, s.created_at, s.updated_at`

// SectionRepository persists sections. Ownership is checked by joining the
// parent project on owner_id.
type SectionRepository struct {
	db *sql.DB
}

func NewSectionRepository(db *sql.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

func scanSection(row rowScanner) (*domain.Section, error) {
	var s domain.Section
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Title, &s.Content, &s.OrderIndex, &s.IsVisible, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByProject returns the project's sections ordered by order_index.
func (r *SectionRepository) ListByProject(ctx context.Context, ownerID, projectID string) ([]domain.Section, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+sectionColumns+`
FROM sections s
JOIN projects p ON p.id = s.project_id
WHERE p.owner_id = $1 AND s.project_id = $2
ORDER BY s.order_index ASC, s.created_at ASC;
`, ownerID, projectID)
	if err != nil {
		return nil, wrap("list sections", err)
	}
	defer rows.Close()

	out := make([]domain.Section, 0, 16)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, wrap("list sections", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list sections", err)
	}
	return out, nil
}

// Create inserts one section. A negative OrderIndex is resolved in SQL to
// max(order_index)+1, or 0 for an empty project.
func (r *SectionRepository) Create(ctx context.Context, ownerID, projectID string, in domain.NewSection) (*domain.Section, error) {
	id := uuid.NewString()

	var row *sql.Row
	if in.OrderIndex >= 0 {
		row = r.db.QueryRowContext(ctx, `
INSERT INTO sections AS s (id, project_id, title, content, order_index)
SELECT $1, p.id, $4, $5, $6
FROM projects p
WHERE p.owner_id = $2 AND p.id = $3
RETURNING `+sectionColumns+`;
`, id, ownerID, projectID, in.Title, in.Content, in.OrderIndex)
	} else {
		row = r.db.QueryRowContext(ctx, `
INSERT INTO sections AS s (id, project_id, title, content, order_index)
SELECT $1, p.id, $4, $5,
       COALESCE((SELECT MAX(x.order_index) FROM sections x WHERE x.project_id = p.id), -1) + 1
FROM projects p
WHERE p.owner_id = $2 AND p.id = $3
RETURNING `+sectionColumns+`;
`, id, ownerID, projectID, in.Title, in.Content)
	}

	s, err := scanSection(row)
	if err != nil {
		return nil, wrap("create section", err)
	}
	return s, nil
}

func (r *SectionRepository) UpdateContent(ctx context.Context, ownerID, sectionID, content string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE sections s
SET content = $3, updated_at = now()
FROM projects p
WHERE p.id = s.project_id AND p.owner_id = $1 AND s.id = $2;
`, ownerID, sectionID, content)
	return expectOne("update section", res, err)
}

func (r *SectionRepository) Delete(ctx context.Context, ownerID, sectionID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM sections s
USING projects p
WHERE p.id = s.project_id AND p.owner_id = $1 AND s.id = $2;
`, ownerID, sectionID)
	return expectOne("delete section", res, err)
}

// Reorder writes every update in one transaction. Either all indices move
// or none do.
func (r *SectionRepository) Reorder(ctx context.Context, ownerID, projectID string, updates []domain.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("reorder sections", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
UPDATE sections s
SET order_index = $4, updated_at = now()
FROM projects p
WHERE p.id = s.project_id AND p.owner_id = $1 AND s.project_id = $2 AND s.id = $3;
`)
	if err != nil {
		return wrap("reorder sections", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, ownerID, projectID, u.ID, u.OrderIndex)
		if err := expectOne("reorder sections", res, err); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("reorder sections", err)
	}
	return nil
}

func expectOne(op string, res sql.Result, err error) error {
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return wrap(op, domain.ErrNotFound)
	}
	return nil
}
