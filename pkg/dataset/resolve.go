package dataset

import "strings"

// ResolveColumn maps a requested column name onto the table's actual
// column, ignoring case and surrounding spaces. An exact match wins over a
// case-insensitive one; otherwise the first case-insensitive match is used.
func ResolveColumn(columns []string, requested string) (string, bool) {
	want := strings.TrimSpace(requested)
	if want == "" {
		return "", false
	}
	for _, c := range columns {
		if c == want {
			return c, true
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c, want) {
			return c, true
		}
	}
	return "", false
}
