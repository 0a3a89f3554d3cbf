package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the formats accepted for a single date column, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
	"2006-01",
	"January 2006",
	"Jan 2006",
	"2-Jan-2006",
	"02-Jan-06",
}

// isoLayouts are the unambiguous formats used when inferring column types.
var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// missingMarkers are the cell texts read as missing values, matching the
// default NA strings of common spreadsheet and dataframe tools.
var missingMarkers = map[string]bool{
	"#n/a": true, "#n/a n/a": true, "#na": true, "-1.#ind": true, "-1.#qnan": true,
	"-nan": true, "1.#ind": true, "1.#qnan": true, "<na>": true, "n/a": true,
	"na": true, "nan": true, "null": true, "none": true,
}

// IsMissing reports whether a cell is empty or holds a missing-value marker.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || missingMarkers[strings.ToLower(s)]
}

// ParseNumber parses a cell as a finite decimal number. Thousands separators
// are accepted when they group digits in threes. Missing markers, infinities
// and hex floats are rejected.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		var ok bool
		if s, ok = stripThousands(s); !ok {
			return 0, false
		}
	}
	return parseDecimal(s)
}

// parseDecimal accepts only signs, digits, one point and an exponent.
func parseDecimal(s string) (float64, bool) {
	if s == "" || strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789+-.eE", r)
	}) >= 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func stripThousands(s string) (string, bool) {
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		sign, intPart = intPart[:1], intPart[1:]
	}
	groups := strings.Split(intPart, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return sign + strings.Join(groups, "") + frac, true
}

// ParseDate parses a cell with DateLayouts.
func ParseDate(cell string) (time.Time, bool) {
	return parseWith(strings.TrimSpace(cell), DateLayouts)
}

func parseWith(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
