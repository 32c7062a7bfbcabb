package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecer struct {
	stmts []string
	err   error
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	return pgconn.CommandTag{}, r.err
}

func TestMigrate(t *testing.T) {
	db := &recordingExecer{}
	require.NoError(t, Migrate(context.Background(), db, zap.NewNop()))

	require.Len(t, db.stmts, 1)
	schema := db.stmts[0]
	for _, table := range []string{"users", "projects", "sections"} {
		assert.Contains(t, schema, "create table if not exists "+table)
	}
	assert.True(t, strings.Contains(schema, "on delete cascade"))
}

func TestMigrate_PropagatesError(t *testing.T) {
	db := &recordingExecer{err: errors.New("permission denied")}
	err := Migrate(context.Background(), db, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema/001_init.sql")
}
