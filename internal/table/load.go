package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/carprices/internal/logging"
)

// Options controls how the source file is parsed.
type Options struct {
	// Delimiter separates fields (default ',')
	Delimiter rune
}

// Load reads the whole delimited text file at path into memory.
//
// The path is resolved to an absolute path first; if nothing exists there
// the error wraps ErrSourceNotFound and names the resolved path. Blank lines
// are skipped and a leading UTF-8 BOM is ignored.
func Load(ctx context.Context, path string, opts Options) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := CheckExists(abs); err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src := wrapSource(f)
	t, err := Parse(src, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	logging.FromContext(ctx).Debug("source loaded",
		"path", abs,
		"bytes", src.BytesRead,
		"rows", t.NumRows(),
		"cols", t.NumCols(),
		"duration", time.Since(start),
	)
	return t, nil
}

// CheckExists returns an error wrapping ErrSourceNotFound if path does not exist.
func CheckExists(path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	return err
}

// Parse reads delimited text from r. The first record is the header.
func Parse(r io.Reader, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	// A stray quote inside an unquoted field is taken literally.
	cr.LazyQuotes = true
	// Row width is checked against the header below so short rows can be padded.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: ErrNoColumns}
	}
	if err != nil {
		return nil, parseErr(err)
	}
	if err := checkUTF8(header, 1); err != nil {
		return nil, err
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseErr(err)
		}

		line, _ := cr.FieldPos(0)
		if len(rec) > len(header) {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)),
			}
		}
		if err := checkUTF8(rec, line); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return FromRecords(header, records)
}

func parseErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return err
}

func checkUTF8(rec []string, line int) error {
	for _, field := range rec {
		if !utf8.ValidString(field) {
			return &ParseError{Line: line, Err: errors.New("invalid UTF-8 sequence")}
		}
	}
	return nil
}
