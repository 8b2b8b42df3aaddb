package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tonetranslate-go/internal/migrations"

	pq "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const defaultPGTimeout = 5 * time.Second

// PostgresStorage keeps one row per flattened counter in usage_counters.
// AddStats upserts with value = value + delta, so replicas share totals.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects, applies the schema migrations and returns the store.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := withPGTimeout(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrations.PostgresUp(dsn); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("connected to PostgreSQL usage storage")
	return &PostgresStorage{db: db}, nil
}

func withPGTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, defaultPGTimeout)
}

// LoadStats implements Storage
func (p *PostgresStorage) LoadStats(ctx context.Context) (*Stats, error) {
	ctx, cancel := withPGTimeout(ctx)
	defer cancel()
	rows, err := p.db.QueryContext(ctx, "SELECT field, value FROM usage_counters")
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	counters := make(map[string]int64)
	for rows.Next() {
		var field string
		var value int64
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		counters[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage rows iteration error: %w", err)
	}
	return StatsFromCounters(counters), nil
}

// AddStats implements Storage. All counters go in one statement.
func (p *PostgresStorage) AddStats(ctx context.Context, delta *Stats) error {
	flat := delta.Flatten()
	if len(flat) == 0 {
		return nil
	}
	fields := make([]string, 0, len(flat))
	values := make([]int64, 0, len(flat))
	for f, v := range flat {
		fields = append(fields, f)
		values = append(values, v)
	}

	ctx, cancel := withPGTimeout(ctx)
	defer cancel()
	query := `
        INSERT INTO usage_counters (field, value, updated_at)
        SELECT f, v, CURRENT_TIMESTAMP FROM unnest($1::text[], $2::bigint[]) AS t(f, v)
        ON CONFLICT (field)
        DO UPDATE SET value = usage_counters.value + EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
    `
	if _, err := p.db.ExecContext(ctx, query, pq.Array(fields), pq.Array(values)); err != nil {
		return fmt.Errorf("failed to add usage: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (p *PostgresStorage) Close() error {
	return p.db.Close()
}
