package table

// convert.go decides which cells are missing, which type a column holds and
// how typed values are rendered back to text.
//
// The rules follow the common dataframe reader conventions so that exports
// of this tool can be compared value for value with exports of the same
// data made elsewhere:
//   - a fixed list of NA spellings counts as missing, matched exactly
//   - integers with any missing cell widen to float64
//   - booleans are recognised only in True/TRUE/true spellings
//   - floats print in shortest round-trip form with a trailing ".0"

import (
	"math"
	"strconv"
	"strings"
)

// naValues are the cell spellings treated as missing.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(s string) bool {
	return naValues[s]
}

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseFloat accepts decimal and exponent notation. Hex floats, underscore
// separators and NaN spellings outside naValues, which strconv allows, are
// rejected.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	default:
		return false, false
	}
}

// inferKind picks the narrowest kind every present cell parses as.
func inferKind(cells []string, valid []bool) Kind {
	if len(cells) == 0 {
		return Text
	}

	ints, floats, bools := true, true, true
	missing := 0
	for i, s := range cells {
		if !valid[i] {
			missing++
			continue
		}
		if ints {
			_, ints = parseInt(s)
		}
		if floats {
			_, floats = parseFloat(s)
		}
		if bools {
			_, bools = parseBool(s)
		}
		if !ints && !floats && !bools {
			return Text
		}
	}

	switch {
	case missing == len(cells):
		return Float64
	case ints && missing == 0:
		return Int64
	case ints || floats:
		return Float64
	case bools && missing == 0:
		return Bool
	default:
		return Text
	}
}

// FormatFloat renders f like Python's repr: shortest round-trip digits, a
// trailing ".0" for integral values and exponent notation outside
// [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
