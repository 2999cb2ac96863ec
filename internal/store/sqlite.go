package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/carprices/internal/logging"
	"github.com/JonMunkholm/carprices/internal/table"
)

// SQLite is a Sink backed by a single database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens path, creating the file if it does not exist. The parent
// directory must exist.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One file, one writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLite{db: db, path: path}, nil
}

// ReplaceTable implements Sink.
func (s *SQLite) ReplaceTable(ctx context.Context, name string, t *table.Table) error {
	logger := logging.WithFields(ctx, "sink", "sqlite", "table", name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(sqliteDialect, name, t)); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	if t.NumCols() > 0 {
		cols := make([]string, t.NumCols())
		for i, c := range t.Columns {
			cols[i] = quoteIdent(c.Name)
		}
		ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO "+quoteIdent(name)+" ("+strings.Join(cols, ",")+") VALUES ("+ph+")")
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(cols))
		for i := 0; i < t.NumRows(); i++ {
			for j, col := range t.Columns {
				args[j] = sqliteValue(cellValue(col, i))
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.Debug("table replaced", "rows", t.NumRows(), "cols", t.NumCols())
	return nil
}

// sqliteValue stores booleans as 0/1 integers.
func sqliteValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

// CountRows implements Sink.
func (s *SQLite) CountRows(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}

// Columns implements Sink.
func (s *SQLite) Columns(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name)+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	defer rows.Close()
	return rows.Columns()
}

// Close implements Sink.
func (s *SQLite) Close() error {
	return s.db.Close()
}
