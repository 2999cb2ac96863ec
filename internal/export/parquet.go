package export

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/parquet-go/parquet-go/encoding"

	"github.com/JonMunkholm/carprices/internal/table"
)

// Codec returns the Parquet compression codec for a configured name.
func Codec(name string) (compress.Codec, error) {
	switch strings.ToLower(name) {
	case "none", "uncompressed":
		return &parquet.Uncompressed, nil
	case "", "snappy":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "zstd":
		return &parquet.Zstd, nil
	default:
		return nil, fmt.Errorf("unknown parquet compression %q", name)
	}
}

// WriteParquetFile writes t to path as a Parquet file, truncating any
// existing file.
func WriteParquetFile(path string, t *table.Table, codec compress.Codec) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteParquet(f, t, codec); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteParquet writes t to w. Every column is an optional leaf typed from
// the column kind: int64, double, boolean or UTF-8 string.
func WriteParquet(w io.Writer, t *table.Table, codec compress.Codec) error {
	schema := parquet.NewSchema("schema", newColumnGroup(t))
	pw := parquet.NewWriter(w, schema, parquet.Compression(codec))

	row := make(parquet.Row, len(t.Columns))
	for i := 0; i < t.NumRows(); i++ {
		fillRow(row, t, i)
		if _, err := pw.WriteRows([]parquet.Row{row}); err != nil {
			return err
		}
	}

	return pw.Close()
}

// columnGroup is a root node whose fields keep the source column order.
// parquet.Group sorts its fields by name.
type columnGroup []parquet.Field

func newColumnGroup(t *table.Table) columnGroup {
	g := make(columnGroup, len(t.Columns))
	for i, col := range t.Columns {
		g[i] = &columnField{Node: parquet.Optional(leafFor(col.Kind)), name: col.Name}
	}
	return g
}

func leafFor(k table.Kind) parquet.Node {
	switch k {
	case table.Int64:
		return parquet.Int(64)
	case table.Float64:
		return parquet.Leaf(parquet.DoubleType)
	case table.Bool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.String()
	}
}

func (g columnGroup) ID() int                     { return 0 }
func (g columnGroup) String() string              { return "columns" }
func (g columnGroup) Type() parquet.Type          { return parquet.Group{}.Type() }
func (g columnGroup) Optional() bool              { return false }
func (g columnGroup) Repeated() bool              { return false }
func (g columnGroup) Required() bool              { return true }
func (g columnGroup) Leaf() bool                  { return false }
func (g columnGroup) Fields() []parquet.Field     { return g }
func (g columnGroup) Encoding() encoding.Encoding { return nil }
func (g columnGroup) Compression() compress.Codec { return nil }
func (g columnGroup) GoType() reflect.Type        { return reflect.TypeOf(parquet.Row(nil)) }

type columnField struct {
	parquet.Node
	name string
}

func (f *columnField) Name() string { return f.name }

// Value is only used when writing Go values; rows are written pre-built.
func (f *columnField) Value(reflect.Value) reflect.Value { return reflect.Value{} }

// fillRow copies row i of t into row. Present cells have definition level 1.
func fillRow(row parquet.Row, t *table.Table, i int) {
	for j, col := range t.Columns {
		if col.IsNull(i) {
			row[j] = parquet.NullValue().Level(0, 0, j)
			continue
		}

		var v parquet.Value
		switch col.Kind {
		case table.Int64:
			n, _ := col.Int(i)
			v = parquet.Int64Value(n)
		case table.Float64:
			x, _ := col.Float(i)
			v = parquet.DoubleValue(x)
		case table.Bool:
			b, _ := col.Bool(i)
			v = parquet.BooleanValue(b)
		default:
			s, _ := col.Text(i)
			v = parquet.ByteArrayValue([]byte(s))
		}
		row[j] = v.Level(0, 1, j)
	}
}
