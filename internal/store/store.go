// Package store lands a table in a relational database.
//
// A Sink replaces a named table wholesale: the old table (rows and schema)
// is dropped and recreated from the loaded table inside one transaction, so
// repeated runs never append. Column SQL types follow the inferred column
// kinds.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/carprices/internal/table"
)

// Sink is a relational database that can hold a replaced table.
type Sink interface {
	// ReplaceTable drops name if it exists and recreates it with the
	// columns and rows of t.
	ReplaceTable(ctx context.Context, name string, t *table.Table) error

	// CountRows returns SELECT COUNT(*) of name.
	CountRows(ctx context.Context, name string) (int64, error)

	// Columns returns the column names of name in table order.
	Columns(ctx context.Context, name string) ([]string, error)

	// Close releases the connection.
	Close() error
}

// Open connects to the sink for driver. For sqlite dsn is a file path,
// for postgres a connection URL.
func Open(ctx context.Context, driver, dsn string) (Sink, error) {
	switch strings.ToLower(driver) {
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// dialect maps column kinds to SQL type names.
type dialect struct {
	Int, Float, Bool, Text string
}

var (
	sqliteDialect   = dialect{Int: "INTEGER", Float: "REAL", Bool: "INTEGER", Text: "TEXT"}
	postgresDialect = dialect{Int: "BIGINT", Float: "DOUBLE PRECISION", Bool: "BOOLEAN", Text: "TEXT"}
)

func (d dialect) typeOf(k table.Kind) string {
	switch k {
	case table.Int64:
		return d.Int
	case table.Float64:
		return d.Float
	case table.Bool:
		return d.Bool
	default:
		return d.Text
	}
}

// quoteIdent double-quotes an identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// createTableSQL builds the CREATE TABLE statement for t.
func createTableSQL(d dialect, name string, t *table.Table) string {
	defs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = quoteIdent(col.Name) + " " + d.typeOf(col.Kind)
	}
	return "CREATE TABLE " + quoteIdent(name) + " (" + strings.Join(defs, ", ") + ")"
}

// cellValue returns row i of col as a driver value, or nil when missing.
func cellValue(col *table.Column, i int) any {
	switch col.Kind {
	case table.Int64:
		if v, ok := col.Int(i); ok {
			return v
		}
	case table.Float64:
		if v, ok := col.Float(i); ok {
			return v
		}
	case table.Bool:
		if v, ok := col.Bool(i); ok {
			return v
		}
	default:
		if v, ok := col.Text(i); ok {
			return v
		}
	}
	return nil
}
