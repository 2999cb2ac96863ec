// Package export writes a table to files: delimited text and Parquet.
//
// Both writers emit exactly the table's columns in order, with no row
// index, and replace any existing file at the destination.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/carprices/internal/table"
)

// WriteCSVFile writes t to path as comma separated text with a header row,
// truncating any existing file.
func WriteCSVFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV writes t to w. Cells are rendered with Column.Format.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Names()); err != nil {
		return err
	}

	rec := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, col := range t.Columns {
			rec[j] = col.Format(i)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
