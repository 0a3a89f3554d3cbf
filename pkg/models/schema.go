package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Coarse column type tags, named the way pandas reports them.
const (
	DTypeInt      = "int64"
	DTypeFloat    = "float64"
	DTypeBool     = "bool"
	DTypeDatetime = "datetime64[ns]"
	DTypeObject   = "object"
)

// ColumnSchema is one column name and its inferred type tag.
type ColumnSchema struct {
	Name  string
	DType string
}

// Schema maps column name to type tag, keeping the table's column order.
// It serializes as a JSON object.
type Schema []ColumnSchema

// DType returns the tag for an exact column name.
func (s Schema) DType(name string) (string, bool) {
	for _, c := range s {
		if c.Name == name {
			return c.DType, true
		}
	}
	return "", false
}

// Names returns the column names in table order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// PromptLines renders the schema as "- col (type: dtype)" lines.
func (s Schema) PromptLines() string {
	var sb strings.Builder
	for i, c := range s {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s (type: %s)", c.Name, c.DType)
	}
	return sb.String()
}

func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.DType)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("schema: expected object")
	}

	out := Schema{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var dtype string
		if err := dec.Decode(&dtype); err != nil {
			return fmt.Errorf("schema: column %v: %w", keyTok, err)
		}
		out = append(out, ColumnSchema{Name: keyTok.(string), DType: dtype})
	}
	*s = out
	return nil
}
