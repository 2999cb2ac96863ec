// Package profile computes the diagnostics the profile job prints: table
// shape, per-column missing counts and a descriptive summary of the price
// column.
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/JonMunkholm/carprices/internal/table"
)

var (
	// ErrColumnNotFound is returned when the summarized column is absent.
	ErrColumnNotFound = errors.New("column not found")

	// ErrNotNumeric is returned when the summarized column holds text.
	ErrNotNumeric = errors.New("column is not numeric")
)

// ColumnCount pairs a column name with a count.
type ColumnCount struct {
	Name  string
	Count int
}

// Summary is a descriptive statistics block over the non-missing values
// of one numeric column. Std is the sample standard deviation; quartiles
// interpolate linearly between the closest ranks.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Report is everything the profile job prints for one table.
type Report struct {
	Rows    int
	Cols    int
	Missing []ColumnCount
	Column  string
	Stats   Summary
}

// Build profiles t, summarizing the column named priceColumn.
func Build(t *table.Table, priceColumn string) (*Report, error) {
	stats, err := DescribeColumn(t, priceColumn)
	if err != nil {
		return nil, err
	}
	return &Report{
		Rows:    t.NumRows(),
		Cols:    t.NumCols(),
		Missing: MissingCounts(t),
		Column:  priceColumn,
		Stats:   stats,
	}, nil
}

// MissingCounts returns the number of missing cells of every column, in
// column order.
func MissingCounts(t *table.Table) []ColumnCount {
	out := make([]ColumnCount, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = ColumnCount{Name: c.Name, Count: c.NullCount()}
	}
	return out
}

// DescribeColumn summarizes a numeric column of t.
func DescribeColumn(t *table.Table, name string) (Summary, error) {
	col, ok := t.Column(name)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	// A header-only source has no cells to infer a kind from.
	if col.Len() == 0 {
		return Describe(nil), nil
	}
	if col.Kind != table.Int64 && col.Kind != table.Float64 {
		return Summary{}, fmt.Errorf("%w: %q has kind %s", ErrNotNumeric, name, col.Kind)
	}
	return Describe(col.Floats()), nil
}

// Describe summarizes values, skipping NaNs. An empty input yields Count 0
// and NaN everywhere else; a single value has an undefined (NaN) Std.
func Describe(values []float64) Summary {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = math.NaN()
	}

	return Summary{
		Count: len(sorted),
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(sorted),
		Q25:   quantile(0.25, sorted),
		Q50:   quantile(0.50, sorted),
		Q75:   quantile(0.75, sorted),
		Max:   floats.Max(sorted),
	}
}

// quantile interpolates linearly between the closest ranks of sorted
// (Hyndman and Fan type 7). stat.Quantile only offers the empirical and
// type 4 estimators.
func quantile(p float64, sorted []float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
