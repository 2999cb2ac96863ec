package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/carprices/internal/logging"
	"github.com/JonMunkholm/carprices/internal/table"
)

// Postgres is a Sink backed by a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and verifies the connection.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// ReplaceTable implements Sink. Rows are streamed with COPY.
func (p *Postgres) ReplaceTable(ctx context.Context, name string, t *table.Table) error {
	logger := logging.WithFields(ctx, "sink", "postgres", "table", name)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	ident := pgx.Identifier{name}.Sanitize()
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(postgresDialect, name, t)); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{name}, t.Names(),
		pgx.CopyFromSlice(t.NumRows(), func(i int) ([]any, error) {
			row := make([]any, t.NumCols())
			for j, col := range t.Columns {
				row[j] = pgValue(col, i)
			}
			return row, nil
		}))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.Debug("table replaced", "rows", copied, "cols", t.NumCols())
	return nil
}

// pgValue converts row i of col to the pgtype matching the column type.
// Missing cells become invalid (NULL) values.
func pgValue(col *table.Column, i int) any {
	switch col.Kind {
	case table.Int64:
		v, ok := col.Int(i)
		return pgtype.Int8{Int64: v, Valid: ok}
	case table.Float64:
		v, ok := col.Float(i)
		return pgtype.Float8{Float64: v, Valid: ok}
	case table.Bool:
		v, ok := col.Bool(i)
		return pgtype.Bool{Bool: v, Valid: ok}
	default:
		v, ok := col.Text(i)
		return pgtype.Text{String: v, Valid: ok}
	}
}

// CountRows implements Sink.
func (p *Postgres) CountRows(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgx.Identifier{name}.Sanitize()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}

// Columns implements Sink.
func (p *Postgres) Columns(ctx context.Context, name string) ([]string, error) {
	rows, err := p.pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{name}.Sanitize()+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, rows.Err()
}

// Close implements Sink.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
