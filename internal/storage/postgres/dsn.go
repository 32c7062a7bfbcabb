package postgres

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/research-doc-backend/config"
)

// DSN renders cfg as a libpq key/value connection string. lib/pq and pgx
// both accept it.
func DSN(cfg *config.DatabaseConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(cfg.Host), cfg.Port, quote(cfg.User), quote(cfg.Password), quote(cfg.Name), sslmode,
	)
}

// quote escapes a value that is empty or contains spaces or quotes.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
