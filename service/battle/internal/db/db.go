package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// ErrMissingDSN viene ritornato quando non c'e' una DSN configurata.
var ErrMissingDSN = errors.New("DB_DSN is required")

// Open apre il pool Postgres e lo valida con un ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		slog.Error("DB_DSN mancante")
		return nil, ErrMissingDSN
	}

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(10)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(30 * time.Minute)

	// Fallisce subito se il database non e' raggiungibile.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		slog.Error("ping database fallito", "error", err)
		_ = database.Close()
		return nil, err
	}

	return database, nil
}
