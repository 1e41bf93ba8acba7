package schema

import (
	"reflect"
	"testing"

	"tableflip.dev/dbgrid/pkg/grid/editing"
)

func TestMapPostgres(t *testing.T) {
	cases := map[string]DataType{
		"integer":                  Number,
		"NUMERIC(10,2)":            Number,
		"double precision":         Number,
		"money":                    Number,
		"bool":                     Boolean,
		"jsonb":                    LongText,
		"text":                     LongText,
		"character varying(255)":   ShortText,
		"uuid":                     ShortText,
		"timestamp with time zone": ShortText,
		"integer[]":                Array,
		"ARRAY":                    Array,
		"something-new":            ShortText,
	}
	for in, want := range cases {
		if got := MapPostgres(in); got != want {
			t.Fatalf("MapPostgres(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMapMySQL(t *testing.T) {
	cases := map[string]DataType{
		"tinyint(1)":   Boolean,
		"tinyint(4)":   Number,
		"int(11)":      Number,
		"double":       Number,
		"longtext":     LongText,
		"json":         LongText,
		"varchar(64)":  ShortText,
		"enum('a')":    ShortText,
		"geometry":     ShortText,
		" BOOLEAN   ":  Boolean,
		"decimal(9,3)": Number,
	}
	for in, want := range cases {
		if got := MapMySQL(in); got != want {
			t.Fatalf("MapMySQL(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestPolicy(t *testing.T) {
	if LongText.Policy() != editing.Debounced || Array.Policy() != editing.Debounced {
		t.Fatalf("multi-line types should debounce")
	}
	if ShortText.Policy() != editing.Immediate || Number.Policy() != editing.Immediate {
		t.Fatalf("single-line types commit immediately")
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		text     string
		dt       DataType
		nullable bool
		want     any
		err      bool
	}{
		{"42", Number, false, int64(42), false},
		{"4.5", Number, false, 4.5, false},
		{"abc", Number, false, nil, true},
		{"", Number, true, nil, false},
		{"yes", Boolean, false, true, false},
		{"off", Boolean, false, false, false},
		{"maybe", Boolean, false, nil, true},
		{"{a, b}", Array, false, []any{"a", "b"}, false},
		{`[1, "x"]`, Array, false, []any{float64(1), "x"}, false},
		{"  keep  ", ShortText, true, "  keep  ", false},
		{"", LongText, true, "", false},
	}
	for _, c := range cases {
		got, err := Coerce(c.text, c.dt, c.nullable)
		if (err != nil) != c.err {
			t.Fatalf("Coerce(%q, %s) err = %v", c.text, c.dt, err)
		}
		if !c.err && !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Coerce(%q, %s) = %#v, want %#v", c.text, c.dt, got, c.want)
		}
	}
}

func TestTableValidateAndGridColumns(t *testing.T) {
	tbl := &Table{Name: "users", Columns: []Column{
		{Name: "id", DataTypeLabel: "integer", IsPrimaryKey: true},
		{Name: "bio", DataTypeLabel: "text"},
		{Name: "active", DataTypeLabel: "boolean"},
	}}
	tbl.Normalize()
	if err := tbl.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if tbl.PrimaryKey() != "id" {
		t.Fatalf("primary key = %q", tbl.PrimaryKey())
	}
	cols := tbl.GridColumns()
	if cols[1].Policy != editing.Debounced || !cols[2].Boolean || cols[0].Boolean {
		t.Fatalf("grid columns = %+v", cols)
	}

	dup := &Table{Name: "x", Columns: []Column{{Name: "a"}, {Name: "a"}}}
	if err := dup.Validate(); err == nil {
		t.Fatalf("duplicate columns should fail")
	}
	if err := (&Table{Name: "x"}).Validate(); err != ErrNoColumns {
		t.Fatalf("err = %v", err)
	}
}
