package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"retail-insight-api/pkg/apperrors"
)

// TableExtensions are the formats accepted for retail tables.
var TableExtensions = []string{".csv", ".xlsx"}

// DocumentExtensions are the formats accepted for feedback documents.
var DocumentExtensions = []string{".csv", ".xlsx", ".pdf", ".txt"}

// Ext returns the lower-cased extension of filename.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// SupportsExt reports whether filename has one of exts.
func SupportsExt(filename string, exts []string) bool {
	ext := Ext(filename)
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// LoadTable reads a stored .csv or .xlsx file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return ReadTable(filepath.Base(path), f)
}

// ReadTable decodes a table; the format is taken from filename.
func ReadTable(filename string, r io.Reader) (*Table, error) {
	var rows [][]string

	switch Ext(filename) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel file: %w", err)
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		var err error
		rows, err = cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFile, Ext(filename))
	}

	return NewTable(rows)
}

// ExtractText flattens a feedback document into plain text.
func ExtractText(filename string, data []byte) (string, error) {
	switch Ext(filename) {
	case ".pdf":
		return pdfText(data)
	case ".txt":
		return string(data), nil
	case ".csv", ".xlsx":
		t, err := ReadTable(filename, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		return t.String(), nil
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFile, Ext(filename))
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return buf.String(), nil
}

// String renders the table as pipe-separated lines, header first.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Columns, " | "))
	for _, row := range t.Rows {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(row, " | "))
	}
	return sb.String()
}
