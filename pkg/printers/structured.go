package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/store"
)

// Format selects how command output is rendered.
type Format string

const (
	Pretty Format = "pretty"
	JSON   Format = "json"
	YAML   Format = "yaml"
)

// ParseFormat accepts pretty, json or yaml. Empty is pretty.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Pretty:
		return Pretty, nil
	case JSON, YAML:
		return f, nil
	}
	return Pretty, fmt.Errorf("printers: unknown output %q, want pretty, json or yaml", s)
}

// PageDocument is the machine readable form of a page.
type PageDocument struct {
	Table      string           `json:"table" yaml:"table"`
	Page       int              `json:"page" yaml:"page"`
	PageSize   int              `json:"pageSize" yaml:"pageSize"`
	TotalRows  int              `json:"totalRows" yaml:"totalRows"`
	TotalPages int              `json:"totalPages" yaml:"totalPages"`
	Rows       []map[string]any `json:"rows" yaml:"rows"`
}

// RowKeyID is the key carrying the storage id in structured rows.
const RowKeyID = "_id"

// NewPageDocument converts p, adding each row's id under RowKeyID.
func NewPageDocument(p app.Page) PageDocument {
	doc := PageDocument{
		Table:      p.Table,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalRows:  p.TotalRows,
		TotalPages: p.TotalPages,
		Rows:       make([]map[string]any, 0, len(p.Rows)),
	}
	for i, r := range p.Rows {
		row := make(map[string]any, len(r)+1)
		for k, v := range r {
			row[k] = v
		}
		row[RowKeyID] = p.IDs[i]
		doc.Rows = append(doc.Rows, row)
	}
	return doc
}

// RecordDocument flattens a stored record for output.
func RecordDocument(rec store.Record) map[string]any {
	row := make(map[string]any, len(rec.Values)+1)
	for k, v := range rec.Values {
		row[k] = v
	}
	row[RowKeyID] = rec.ID
	return row
}

// Write encodes v as JSON or YAML.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("printers: %q is not a structured format", f)
}
