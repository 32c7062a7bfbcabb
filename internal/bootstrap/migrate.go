package bootstrap

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Execer is the subset of *pgxpool.Pool used to apply the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrate applies every embedded schema file in name order. The files are
// idempotent, so running them on each start is safe.
func Migrate(ctx context.Context, db Execer, log *zap.Logger) error {
	files, err := schemaFiles()
	if err != nil {
		return err
	}
	for _, name := range files {
		body, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		log.Info("schema applied", zap.String("file", name))
	}
	return nil
}

func schemaFiles() ([]string, error) {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
