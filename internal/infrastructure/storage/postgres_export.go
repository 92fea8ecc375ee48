package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

// DefaultExportTable is used when no table name is configured.
const DefaultExportTable = "tosdr_points"

var tableNameExpr = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresExport mirrors the output table into Postgres for consumers that
// query instead of reading the JSON file.
type PostgresExport struct {
	db    *sql.DB
	table string
}

var _ ports.TableWriter = (*PostgresExport)(nil)

// NewPostgresExport wires a sql.DB; table must be a plain identifier,
// optionally schema-qualified.
func NewPostgresExport(db *sql.DB, table string) (*PostgresExport, error) {
	if table == "" {
		table = DefaultExportTable
	}
	if !tableNameExpr.MatchString(table) {
		return nil, fmt.Errorf("invalid export table name %q", table)
	}
	return &PostgresExport{db: db, table: table}, nil
}

// Name identifies the writer in logs.
func (e *PostgresExport) Name() string {
	return "postgres:" + e.table
}

// Write upserts every table entry in one transaction.
func (e *PostgresExport) Write(ctx context.Context, table domain.OutputTable) error {
	if e.db == nil {
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, e.schema()); err != nil {
		return fmt.Errorf("ensure export table: %w", err)
	}

	for _, key := range table.Keys() {
		query, args, err := e.upsert(key, table[key]).ToSql()
		if err != nil {
			return fmt.Errorf("build upsert %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func (e *PostgresExport) schema() string {
	return `CREATE TABLE IF NOT EXISTS ` + e.table + ` (
		domain     TEXT PRIMARY KEY,
		score      INTEGER NOT NULL,
		class      TEXT,
		all_good   TEXT[] NOT NULL,
		all_bad    TEXT[] NOT NULL,
		match_good TEXT[] NOT NULL,
		match_bad  TEXT[] NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
}

func (e *PostgresExport) upsert(key string, points *domain.AggregatedPoints) sq.InsertBuilder {
	var class any
	if points.Class.Known() {
		class = string(points.Class)
	}

	return sq.Insert(e.table).
		Columns("domain", "score", "class", "all_good", "all_bad", "match_good", "match_bad", "updated_at").
		Values(
			key,
			points.Score,
			class,
			pq.Array(points.All.Good),
			pq.Array(points.All.Bad),
			pq.Array(points.Match.Good),
			pq.Array(points.Match.Bad),
			sq.Expr("NOW()"),
		).
		Suffix(`ON CONFLICT (domain) DO UPDATE
              SET score = EXCLUDED.score,
                  class = EXCLUDED.class,
                  all_good = EXCLUDED.all_good,
                  all_bad = EXCLUDED.all_bad,
                  match_good = EXCLUDED.match_good,
                  match_bad = EXCLUDED.match_bad,
                  updated_at = NOW()`).
		PlaceholderFormat(sq.Dollar)
}
