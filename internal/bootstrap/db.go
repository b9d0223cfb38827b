package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"studyflow/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openDB opens and pings the Postgres pool.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", normalizeDSN(cfg.DBConnectionString, cfg.Environment))
	if err != nil {
		return nil, fmt.Errorf("failed to open DB connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleSec) * time.Second)
	return db, nil
}

// normalizeDSN disables SSL for local development and forces the simple
// query protocol elsewhere, since transaction poolers such as pgbouncer
// reject server-side prepared statements.
func normalizeDSN(dsn, env string) string {
	isURL := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	sep := func() string {
		if !isURL {
			return " "
		}
		if strings.Contains(dsn, "?") {
			return "&"
		}
		return "?"
	}

	if env == config.EnvDevelopment && !strings.Contains(dsn, "sslmode") {
		dsn += sep() + "sslmode=disable"
	}
	if env != config.EnvDevelopment && !strings.Contains(dsn, "prefer_simple_protocol") {
		dsn += sep() + "prefer_simple_protocol=true"
	}
	return dsn
}

// portFromDSN extracts the port from a URL-style DSN for startup logs.
func portFromDSN(dsn string) string {
	parts := strings.Split(dsn, ":")
	for i, part := range parts {
		if strings.Contains(part, "@") && len(parts) > i+1 {
			return strings.SplitN(parts[i+1], "/", 2)[0]
		}
	}
	return "not_found"
}
