package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

var projectCols = []string{"id", "owner_id", "title", "problem_statement", "industry", "timeline", "target_users", "additional_context", "created_at", "updated_at"}

func setupProjectRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProjectRepository(db), mock
}

func projectRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(projectCols).
		AddRow(id, "owner-1", "Checkout study", "Customers abandon checkout", "E-commerce", "Q3", nil, nil, now, now)
}

func TestProjectRepository_CreateWithSections(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), "owner-1", "Checkout study", "Customers abandon checkout", "E-commerce", "Q3", nil, nil).
		WillReturnRows(projectRow("rsch-11111-2222"))
	mock.ExpectQuery(`INSERT INTO sections`).
		WithArgs(sqlmock.AnyArg(), "rsch-11111-2222", "Problem Statement", "<p>a</p>", 0).
		WillReturnRows(sqlmock.NewRows([]string{"is_visible", "created_at", "updated_at"}).AddRow(true, now, now))
	mock.ExpectQuery(`INSERT INTO sections`).
		WithArgs(sqlmock.AnyArg(), "rsch-11111-2222", "Key Findings", "<p>b</p>", 1).
		WillReturnRows(sqlmock.NewRows([]string{"is_visible", "created_at", "updated_at"}).AddRow(true, now, now))
	mock.ExpectCommit()

	p, secs, err := repo.CreateWithSections(context.Background(), "owner-1",
		domain.NewProject{Title: "Checkout study", ProblemStatement: "Customers abandon checkout", Industry: "E-commerce", Timeline: " Q3 "},
		[]domain.NewSection{{Title: "Problem Statement", Content: "<p>a</p>", OrderIndex: 0}, {Title: "Key Findings", Content: "<p>b</p>", OrderIndex: 1}})
	require.NoError(t, err)

	assert.Equal(t, "rsch-11111-2222", p.ID)
	require.NotNil(t, p.Timeline)
	assert.Equal(t, "Q3", *p.Timeline)
	assert.Nil(t, p.TargetUsers)
	require.Len(t, secs, 2)
	assert.Equal(t, "Key Findings", secs[1].Title)
	assert.Equal(t, 1, secs[1].OrderIndex)
	assert.NotEmpty(t, secs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateDefaultsTitle(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), "owner-1", domain.DefaultTitle, "ps", "Retail", nil, nil, nil).
		WillReturnRows(projectRow("rsch-11111-2222"))
	mock.ExpectCommit()

	_, _, err := repo.CreateWithSections(context.Background(), "owner-1", domain.NewProject{ProblemStatement: "ps", Industry: "Retail"}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateRetriesOnIDCollision(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects`).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects`).WillReturnRows(projectRow("rsch-33333-4444"))
	mock.ExpectCommit()

	p, _, err := repo.CreateWithSections(context.Background(), "owner-1", domain.NewProject{ProblemStatement: "ps", Industry: "Retail"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "rsch-33333-4444", p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateRollsBackOnSectionFailure(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects`).WillReturnRows(projectRow("rsch-11111-2222"))
	mock.ExpectQuery(`INSERT INTO sections`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, _, err := repo.CreateWithSections(context.Background(), "owner-1",
		domain.NewProject{ProblemStatement: "ps", Industry: "Retail"},
		[]domain.NewSection{{Title: "Problem Statement", Content: "x"}})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Get(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM projects`).
			WithArgs("owner-1", "rsch-11111-2222").
			WillReturnRows(projectRow("rsch-11111-2222"))

		p, err := repo.Get(context.Background(), "owner-1", "rsch-11111-2222")
		require.NoError(t, err)
		assert.Equal(t, "Checkout study", p.Title)
	})

	t.Run("other owner", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM projects`).
			WithArgs("owner-2", "rsch-11111-2222").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "owner-2", "rsch-11111-2222")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_List(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM projects\s+WHERE owner_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("rsch-1", "owner-1", "A", "ps", "Retail", nil, nil, nil, now, now).
			AddRow("rsch-2", "owner-1", "B", "ps", "Healthcare", nil, "clinicians", nil, now, now))

	items, err := repo.List(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "clinicians", *items[1].TargetUsers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Rename(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectQuery(`UPDATE projects`).
		WithArgs("owner-1", "rsch-missing", "New").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Rename(context.Background(), "owner-1", "rsch-missing", "New")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Delete(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectExec(`DELETE FROM projects`).WithArgs("owner-1", "rsch-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM projects`).WithArgs("owner-1", "rsch-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "owner-1", "rsch-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "owner-1", "rsch-2"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
