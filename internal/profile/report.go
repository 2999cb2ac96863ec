package profile

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// WriteTo prints the report in the layout of a dataframe console dump:
// shape line, missing-count series, then the describe block of the price
// column.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Rows, Cols: (%d, %d)\n", r.Rows, r.Cols)

	b.WriteString("Missing values per column:\n ")
	labels := make([]string, len(r.Missing))
	values := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		labels[i] = m.Name
		values[i] = strconv.Itoa(m.Count)
	}
	writeSeries(&b, labels, values, "", "int64")

	fmt.Fprintf(&b, "%s stats:\n ", r.Column)
	writeSeries(&b,
		[]string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		[]string{
			formatStat(float64(r.Stats.Count)),
			formatStat(r.Stats.Mean),
			formatStat(r.Stats.Std),
			formatStat(r.Stats.Min),
			formatStat(r.Stats.Q25),
			formatStat(r.Stats.Q50),
			formatStat(r.Stats.Q75),
			formatStat(r.Stats.Max),
		},
		r.Column, "float64")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// writeSeries lays out labels left-aligned and values right-aligned with a
// four space gutter, followed by the name/dtype footer.
func writeSeries(b *strings.Builder, labels, values []string, name, dtype string) {
	if len(labels) == 0 {
		fmt.Fprintf(b, "Series([], dtype: %s)\n", dtype)
		return
	}

	lw, vw := 0, 0
	for i := range labels {
		lw = max(lw, utf8.RuneCountInString(labels[i]))
		vw = max(vw, len(values[i]))
	}

	for i := range labels {
		fmt.Fprintf(b, "%-*s    %*s\n", lw, labels[i], vw, values[i])
	}

	if name != "" {
		fmt.Fprintf(b, "Name: %s, dtype: %s\n", name, dtype)
	} else {
		fmt.Fprintf(b, "dtype: %s\n", dtype)
	}
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
