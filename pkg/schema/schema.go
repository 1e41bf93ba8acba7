// Package schema describes table columns and maps database type names to the
// categories the grid renders and edits.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/dbgrid/pkg/grid"
)

// Column is the metadata of one table column.
type Column struct {
	Name             string   `json:"columnName" yaml:"columnName"`
	DataTypeLabel    string   `json:"dataType" yaml:"dataType"`
	IsNullable       bool     `json:"isNullable" yaml:"isNullable"`
	ColumnDefault    *string  `json:"columnDefault,omitempty" yaml:"columnDefault,omitempty"`
	IsPrimaryKey     bool     `json:"isPrimaryKey" yaml:"isPrimaryKey"`
	IsForeignKey     bool     `json:"isForeignKey" yaml:"isForeignKey"`
	ReferencedTable  string   `json:"referencedTable,omitempty" yaml:"referencedTable,omitempty"`
	ReferencedColumn string   `json:"referencedColumn,omitempty" yaml:"referencedColumn,omitempty"`
	DataType         DataType `json:"-" yaml:"-"`
}

// Table is a table's schema.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Dialect Dialect  `json:"dialect" yaml:"dialect"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// ErrNoColumns is returned by Validate for a table without columns.
var ErrNoColumns = errors.New("schema: table has no columns")

// Normalize fills in DataType for every column from its label.
func (t *Table) Normalize() {
	if t.Dialect == "" {
		t.Dialect = Postgres
	}
	for i := range t.Columns {
		t.Columns[i].DataType = t.Dialect.Map(t.Columns[i].DataTypeLabel)
	}
}

// Validate checks that the table is usable.
func (t *Table) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("schema: table name required")
	}
	if len(t.Columns) == 0 {
		return ErrNoColumns
	}
	seen := map[string]bool{}
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return errors.New("schema: column name required")
		}
		if seen[c.Name] {
			return fmt.Errorf("schema: duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the first primary key column name, or "".
func (t *Table) PrimaryKey() string {
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			return c.Name
		}
	}
	return ""
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// GridColumns converts the schema to grid columns.
func (t *Table) GridColumns() []grid.Column {
	out := make([]grid.Column, len(t.Columns))
	for i, c := range t.Columns {
		dt := c.DataType
		if dt == "" {
			dt = t.Dialect.Map(c.DataTypeLabel)
		}
		out[i] = grid.Column{
			ID:            c.Name,
			DataTypeLabel: c.DataTypeLabel,
			MinWidth:      max(dt.MinWidth(), len(c.Name)+2),
			Policy:        dt.Policy(),
			Boolean:       dt == Boolean,
		}
	}
	return out
}

// Default returns the column default parsed as a value of the column type,
// or nil.
func (c Column) Default() any {
	if c.ColumnDefault == nil {
		return nil
	}
	v, err := Coerce(*c.ColumnDefault, c.DataType, true)
	if err != nil {
		return *c.ColumnDefault
	}
	return v
}

// Coerce parses text typed into an editor into a value of type d. Empty text
// is nil for nullable columns.
func Coerce(text string, d DataType, nullable bool) (any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && nullable && d != ShortText && d != LongText {
		return nil, nil
	}
	switch d {
	case Number:
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("schema: %q is not a number", text)
		}
		return f, nil
	case Boolean:
		switch strings.ToLower(trimmed) {
		case "t", "true", "1", "yes", "y", "on":
			return true, nil
		case "f", "false", "0", "no", "n", "off":
			return false, nil
		}
		return nil, fmt.Errorf("schema: %q is not a boolean", text)
	case Array:
		if strings.HasPrefix(trimmed, "[") {
			var out []any
			if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
				return nil, fmt.Errorf("schema: parse array: %w", err)
			}
			return out, nil
		}
		trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "{"), "}")
		if trimmed == "" {
			return []any{}, nil
		}
		parts := strings.Split(trimmed, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, nil
	}
	return text, nil
}
