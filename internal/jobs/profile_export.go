// Package jobs implements the two batch entry points. Each job is a single
// linear sequence of steps that writes its report to an io.Writer and
// returns the first error it meets; nothing is retried or rolled back.
package jobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/carprices/internal/config"
	"github.com/JonMunkholm/carprices/internal/export"
	"github.com/JonMunkholm/carprices/internal/logging"
	"github.com/JonMunkholm/carprices/internal/profile"
	"github.com/JonMunkholm/carprices/internal/table"
)

// ProfileExport loads the source table, prints its profile, and writes the
// CSV and Parquet exports into the export directory.
func ProfileExport(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.WithFields(ctx, "job", "profile")
	start := time.Now()

	codec, err := export.Codec(cfg.Export.ParquetCompression)
	if err != nil {
		return err
	}

	t, err := table.Load(ctx, cfg.Source.Path, table.Options{Delimiter: cfg.Source.Delim()})
	if err != nil {
		return err
	}

	report, err := profile.Build(t, cfg.Source.PriceColumn)
	if err != nil {
		return err
	}
	if _, err := report.WriteTo(out); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	csvPath := filepath.Join(cfg.Export.Dir, cfg.Export.CSVName)
	if err := export.WriteCSVFile(csvPath, t); err != nil {
		return err
	}
	logger.Debug("csv written", "path", csvPath)

	parquetPath := filepath.Join(cfg.Export.Dir, cfg.Export.ParquetName)
	if err := export.WriteParquetFile(parquetPath, t, codec); err != nil {
		return err
	}
	logger.Debug("parquet written", "path", parquetPath, "compression", cfg.Export.ParquetCompression)

	fmt.Fprintf(out, "\n✅ Saved outputs to %s/\n", filepath.ToSlash(filepath.Clean(cfg.Export.Dir)))

	logger.Info("profile job completed",
		"rows", t.NumRows(),
		"cols", t.NumCols(),
		"duration", time.Since(start),
	)
	return nil
}
