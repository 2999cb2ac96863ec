package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/JonMunkholm/carprices/internal/table"
)

const scenario = "Make,Price_USD\nA,100\nB,\nC,300\n"

func mustParse(t *testing.T, input string) *table.Table {
	t.Helper()
	tbl, err := table.Parse(strings.NewReader(input), table.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tbl
}

// readParquet returns the column names and all rows of a parquet file.
func readParquet(t *testing.T, data []byte) ([]string, []parquet.Row) {
	t.Helper()

	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	var names []string
	for _, field := range f.Schema().Fields() {
		names = append(names, field.Name())
	}

	r := parquet.NewReader(bytes.NewReader(data))
	defer r.Close()

	var rows []parquet.Row
	buf := make([]parquet.Row, 16)
	for {
		n, err := r.ReadRows(buf)
		for _, row := range buf[:n] {
			rows = append(rows, row.Clone())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadRows() error = %v", err)
		}
		if n == 0 {
			break
		}
	}

	if int64(len(rows)) != f.NumRows() {
		t.Fatalf("read %d rows, metadata says %d", len(rows), f.NumRows())
	}
	return names, rows
}

func TestWriteCSV_Scenario(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, mustParse(t, scenario)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "Make,Price_USD\nA,100.0\nB,\nC,300.0\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	input := "id,name,score,active\n1,\"Smith, J\",2.5,True\n2,\"say \"\"hi\"\"\",,False\n3,,10,true\n"
	src := mustParse(t, input)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, src); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	back := mustParse(t, buf.String())
	if back.Shape() != src.Shape() {
		t.Fatalf("shape = %s, want %s", back.Shape(), src.Shape())
	}
	if strings.Join(back.Names(), ",") != strings.Join(src.Names(), ",") {
		t.Fatalf("names = %v, want %v", back.Names(), src.Names())
	}
	for j, col := range src.Columns {
		got := back.Columns[j]
		if got.Kind != col.Kind {
			t.Errorf("column %s kind = %v, want %v", col.Name, got.Kind, col.Kind)
		}
		for i := 0; i < src.NumRows(); i++ {
			if got.Format(i) != col.Format(i) {
				t.Errorf("column %s row %d = %q, want %q", col.Name, i, got.Format(i), col.Format(i))
			}
		}
	}
}

func TestWriteCSVFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte(strings.Repeat("stale\n", 100)), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteCSVFile(path, mustParse(t, scenario)); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := WriteCSVFile(path, mustParse(t, scenario)); err != nil {
		t.Fatalf("second WriteCSVFile() error = %v", err)
	}
	second, _ := os.ReadFile(path)

	if !bytes.Equal(first, second) {
		t.Error("second run produced different bytes")
	}
	records, err := csv.NewReader(bytes.NewReader(second)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Errorf("records = %d, want 4 (header + 3)", len(records))
	}
}

func TestWriteCSVFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "out.csv")
	if err := WriteCSVFile(path, mustParse(t, scenario)); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestWriteParquet_Scenario(t *testing.T) {
	var buf bytes.Buffer
	codec, _ := Codec("snappy")
	if err := WriteParquet(&buf, mustParse(t, scenario), codec); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	names, rows := readParquet(t, buf.Bytes())
	if strings.Join(names, ",") != "Make,Price_USD" {
		t.Errorf("columns = %v, want [Make Price_USD]", names)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	wantMake := []string{"A", "B", "C"}
	for i, row := range rows {
		if len(row) != 2 {
			t.Fatalf("row %d has %d values, want 2", i, len(row))
		}
		if got := string(row[0].ByteArray()); got != wantMake[i] {
			t.Errorf("row %d Make = %q, want %q", i, got, wantMake[i])
		}
	}
	if rows[0][1].Double() != 100 || rows[2][1].Double() != 300 {
		t.Errorf("prices = %v, %v; want 100, 300", rows[0][1], rows[2][1])
	}
	if !rows[1][1].IsNull() {
		t.Errorf("row 1 price = %v, want null", rows[1][1])
	}
}

func TestWriteParquet_KindsAndOrder(t *testing.T) {
	// Column names deliberately out of alphabetical order.
	src := mustParse(t, "zeta,alpha,mid,flag\n7,x,1.5,True\n8,,2,False\n")

	var buf bytes.Buffer
	if err := WriteParquet(&buf, src, &parquet.Uncompressed); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	names, rows := readParquet(t, buf.Bytes())
	if strings.Join(names, ",") != "zeta,alpha,mid,flag" {
		t.Errorf("columns = %v, want source order", names)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	if rows[1][0].Int64() != 8 {
		t.Errorf("zeta[1] = %v, want 8", rows[1][0])
	}
	if !rows[1][1].IsNull() {
		t.Errorf("alpha[1] = %v, want null", rows[1][1])
	}
	if rows[0][2].Double() != 1.5 {
		t.Errorf("mid[0] = %v, want 1.5", rows[0][2])
	}
	if !rows[0][3].Boolean() || rows[1][3].Boolean() {
		t.Errorf("flag = %v, %v; want true, false", rows[0][3], rows[1][3])
	}
}

func TestWriteParquet_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, mustParse(t, "a,b\n"), &parquet.Snappy); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}
	names, rows := readParquet(t, buf.Bytes())
	if len(names) != 2 || len(rows) != 0 {
		t.Errorf("names = %v, rows = %d; want 2 columns, 0 rows", names, len(rows))
	}
}

func TestWriteParquet_PunctuatedNames(t *testing.T) {
	src := mustParse(t, "Make,\"Price, USD\",-,Price_USD\nA,100,x,7\nB,,y,8\n")

	var buf bytes.Buffer
	if err := WriteParquet(&buf, src, &parquet.Snappy); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	names, rows := readParquet(t, buf.Bytes())
	if got := strings.Join(names, "|"); got != "Make|Price, USD|-|Price_USD" {
		t.Errorf("columns = %q, want names unchanged in source order", got)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][1].Double() != 100 {
		t.Errorf("Price, USD[0] = %v, want 100", rows[0][1])
	}
	if !rows[1][1].IsNull() {
		t.Errorf("Price, USD[1] = %v, want null", rows[1][1])
	}
	if got := string(rows[1][2].ByteArray()); got != "y" {
		t.Errorf("-[1] = %q, want y", got)
	}
	if rows[1][3].Int64() != 8 {
		t.Errorf("Price_USD[1] = %v, want 8", rows[1][3])
	}
}

func TestWriteParquetFile_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	codec, _ := Codec("zstd")

	for i := 0; i < 2; i++ {
		if err := WriteParquetFile(path, mustParse(t, scenario), codec); err != nil {
			t.Fatalf("run %d: WriteParquetFile() error = %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, rows := readParquet(t, data); len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}
}

func TestCodec(t *testing.T) {
	for _, name := range []string{"", "none", "snappy", "GZIP", "zstd"} {
		if _, err := Codec(name); err != nil {
			t.Errorf("Codec(%q) error = %v", name, err)
		}
	}
	if _, err := Codec("lzo"); err == nil {
		t.Error("Codec(lzo) expected error")
	}
}
