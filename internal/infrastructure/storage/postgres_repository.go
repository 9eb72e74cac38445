package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"PFDClassifier/internal/domain"
	"PFDClassifier/internal/ports"
)

const defaultTable = "pfd_classifications"

// PostgresRepository archives classifications into Postgres.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	if table == "" {
		table = defaultTable
	}
	return &PostgresRepository{db: db, table: table}
}

// SaveClassification upserts the classification for (run, year, file).
func (r *PostgresRepository) SaveClassification(ctx context.Context, runID string, c domain.Classification) error {
	if r.db == nil {
		return nil
	}

	query, args, err := buildUpsert(r.table, runID, c)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert classification %s: %w", c.Name, err)
	}

	return nil
}

func buildUpsert(table, runID string, c domain.Classification) (string, []interface{}, error) {
	var answer interface{}
	if c.YesNo != nil {
		answer = string(*c.YesNo)
	}

	return sq.Insert(table).
		Columns(
			"run_id", "year", "file_name", "original_pdf_name", "answer", "raw_answer",
			"model", "prompt_tokens", "completion_tokens", "total_tokens",
		).
		Values(
			runID, c.Year, c.Name, c.OriginalPDFName, answer, c.RawAnswer,
			c.Model, c.Usage.PromptTokens, c.Usage.CompletionTokens, c.Usage.TotalTokens,
		).
		Suffix(`ON CONFLICT (run_id, year, file_name) DO UPDATE
              SET answer = EXCLUDED.answer,
                  raw_answer = EXCLUDED.raw_answer,
                  total_tokens = EXCLUDED.total_tokens,
                  updated_at = NOW()`).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}
