package dataset

import (
	"strconv"
	"strings"

	"retail-insight-api/pkg/models"
)

// ExtractSchema infers a coarse type tag per column. Empty and missing cells
// are ignored; an integer column with missing cells is "float64" and a
// column with no values is "object".
func ExtractSchema(t *Table) models.Schema {
	schema := make(models.Schema, len(t.Columns))
	for i, name := range t.Columns {
		schema[i] = models.ColumnSchema{Name: name, DType: inferDType(t, i)}
	}
	return schema
}

func inferDType(t *Table, col int) string {
	isInt, isFloat, isBool, isDate := true, true, true, true
	seen, missing := 0, false

	for _, row := range t.Rows {
		cell := strings.TrimSpace(row[col])
		if IsMissing(cell) {
			missing = missing || cell != ""
			continue
		}
		seen++

		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, ok := parseDecimal(cell); !ok {
				isFloat = false
			}
		}
		if isBool {
			lower := strings.ToLower(cell)
			if lower != "true" && lower != "false" {
				isBool = false
			}
		}
		if isDate {
			if _, ok := parseWith(cell, isoLayouts); !ok {
				isDate = false
			}
		}
		if !isInt && !isFloat && !isBool && !isDate {
			return models.DTypeObject
		}
	}

	switch {
	case seen == 0:
		return models.DTypeObject
	case isInt && missing:
		return models.DTypeFloat
	case isInt:
		return models.DTypeInt
	case isFloat:
		return models.DTypeFloat
	case isBool:
		return models.DTypeBool
	case isDate:
		return models.DTypeDatetime
	}
	return models.DTypeObject
}
