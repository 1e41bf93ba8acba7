package printers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid"
	"tableflip.dev/dbgrid/pkg/schema"
	"tableflip.dev/dbgrid/pkg/store"
)

func init() {
	color.NoColor = true
}

func testPage() app.Page {
	t := &schema.Table{Name: "people", Columns: []schema.Column{
		{Name: "id", DataTypeLabel: "integer", IsPrimaryKey: true},
		{Name: "name", DataTypeLabel: "varchar", IsNullable: true},
	}}
	t.Normalize()
	return app.Page{
		Table:   "people",
		Columns: t.Columns,
		Rows: []grid.Row{
			{"id": int64(1), "name": "ada"},
			{"id": int64(2), "name": nil},
		},
		IDs:        []int64{10, 11},
		Page:       1,
		PageSize:   100,
		TotalRows:  2,
		TotalPages: 1,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", Pretty, false},
		{"pretty", Pretty, false},
		{"JSON", JSON, false},
		{" yaml ", YAML, false},
		{"csv", Pretty, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) err = %v, wantErr %t", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrettyPage(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, ShowID: true}
	pp.Page(testPage())
	out := buf.String()
	for _, want := range []string{"people - 2 rows", "name", "ada", "NULL", "10", "page 1 of 1 (2 rows)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyEmptyPage(t *testing.T) {
	var buf bytes.Buffer
	p := testPage()
	p.Rows, p.IDs, p.TotalRows = nil, nil, 0
	pp := PrettyPrint{Out: &buf}
	pp.Page(p)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("empty page output = %q", buf.String())
	}
}

func TestPrettyTablesAndColumns(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Tables([]string{"people", "pets"}, []int{2, 0})
	tbl := &schema.Table{Name: "people", Columns: testPage().Columns}
	pp.Columns(tbl)
	out := buf.String()
	for _, want := range []string{"tables - 2 tables", "people", "pets", "people - 2 columns", "varchar", "short-text", "PK"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, NewPageDocument(testPage())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var doc PageDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.TotalRows != 2 || len(doc.Rows) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Rows[0][RowKeyID] != float64(10) || doc.Rows[1]["name"] != nil {
		t.Fatalf("rows = %v", doc.Rows)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	rec := store.Record{ID: 7, Values: map[string]any{"name": "cy"}}
	if err := Write(&buf, YAML, RecordDocument(rec)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got[RowKeyID] != 7 || got["name"] != "cy" {
		t.Fatalf("got %v", got)
	}
}

func TestWritePrettyIsAnError(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Pretty, nil); err == nil {
		t.Fatalf("expected an error")
	}
}
