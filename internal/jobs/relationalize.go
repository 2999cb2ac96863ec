package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/carprices/internal/config"
	"github.com/JonMunkholm/carprices/internal/logging"
	"github.com/JonMunkholm/carprices/internal/store"
	"github.com/JonMunkholm/carprices/internal/table"
)

// Relationalize loads the source table and replaces the configured database
// table with it, then reports the row count read back from the database.
//
// The source is checked before the database is touched, so a missing
// source never creates or modifies a database file.
func Relationalize(ctx context.Context, cfg *config.Config, out io.Writer) (err error) {
	logger := logging.WithFields(ctx, "job", "relationalize", "table", cfg.Database.Table)
	start := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cwd = resolvePath(cwd, ".")
	fmt.Fprintln(out, "📌 Running from:", cwd)

	csvPath := resolvePath(cwd, cfg.Source.Path)
	dsn, target := databaseTarget(cwd, &cfg.Database)
	fmt.Fprintln(out, "📄 CSV:", csvPath)
	fmt.Fprintln(out, "💾 DB :", target)

	if err := table.CheckExists(csvPath); err != nil {
		return err
	}

	t, err := table.Load(ctx, csvPath, table.Options{Delimiter: cfg.Source.Delim()})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Loaded CSV:", t.Shape())

	sink, err := store.Open(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	if err := sink.ReplaceTable(ctx, cfg.Database.Table, t); err != nil {
		return err
	}

	n, err := sink.CountRows(ctx, cfg.Database.Table)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Rows inserted:", n)
	fmt.Fprintln(out, "✅ Database created:", target)

	logger.Info("relationalize job completed",
		"rows", n,
		"cols", t.NumCols(),
		"duration", time.Since(start),
	)
	return nil
}

// resolvePath makes path absolute against dir and resolves symlinks. A
// path that does not exist yet keeps its base name under its resolved parent.
func resolvePath(dir, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	path = filepath.Clean(path)

	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(resolvePath(dir, parent), filepath.Base(path))
}

// databaseTarget returns the DSN to open and a printable description of it.
// Postgres URLs are not printed since they may carry credentials.
func databaseTarget(cwd string, db *config.DatabaseConfig) (dsn, display string) {
	if strings.EqualFold(db.Driver, "postgres") {
		return db.URL, "postgres (DATABASE_URL)"
	}
	p := resolvePath(cwd, db.Path)
	return p, p
}
