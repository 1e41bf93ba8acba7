package schema

import (
	"strings"

	"tableflip.dev/dbgrid/pkg/grid/editing"
)

// DataType is the rendering category of a column.
type DataType string

const (
	ShortText DataType = "short-text"
	LongText  DataType = "long-text"
	Boolean   DataType = "boolean"
	Number    DataType = "number"
	Array     DataType = "array"
)

// Multiline reports whether values are edited in a multi-line editor.
func (d DataType) Multiline() bool {
	return d == LongText || d == Array
}

// Policy is the commit policy for edits of this type.
func (d DataType) Policy() editing.Policy {
	if d.Multiline() {
		return editing.Debounced
	}
	return editing.Immediate
}

// MinWidth is the default column width in terminal cells.
func (d DataType) MinWidth() int {
	switch d {
	case Boolean:
		return 7
	case Number:
		return 10
	case LongText, Array:
		return 24
	default:
		return 14
	}
}

// Dialect selects the type name mapping.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// ParseDialect maps common spellings to a Dialect; anything else is Postgres.
func ParseDialect(s string) Dialect {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return MySQL
	}
	return Postgres
}

// Map maps a type name in dialect d to a DataType.
func (d Dialect) Map(typeName string) DataType {
	if d == MySQL {
		return MapMySQL(typeName)
	}
	return MapPostgres(typeName)
}

type typeRule struct {
	exact    []string
	prefixes []string
	dataType DataType
}

func (r typeRule) match(name string) bool {
	for _, e := range r.exact {
		if name == e {
			return true
		}
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

var postgresRules = []typeRule{
	{
		exact: []string{
			"integer", "int", "int4", "bigint", "int8", "smallint", "int2",
			"decimal", "numeric", "real", "float4", "double precision", "float8", "float",
			"serial", "serial4", "bigserial", "serial8", "money",
		},
		prefixes: []string{"decimal(", "numeric("},
		dataType: Number,
	},
	{exact: []string{"boolean", "bool"}, dataType: Boolean},
	{exact: []string{"text", "xml", "json", "jsonb"}, dataType: LongText},
}

var mysqlRules = []typeRule{
	{exact: []string{"boolean", "bool", "tinyint(1)"}, dataType: Boolean},
	{
		exact: []string{
			"int", "integer", "bigint", "smallint", "tinyint", "mediumint",
			"decimal", "numeric", "float", "double",
		},
		prefixes: []string{
			"int(", "bigint(", "smallint(", "tinyint(", "mediumint(",
			"decimal(", "numeric(", "float(", "double(",
		},
		dataType: Number,
	},
	{exact: []string{"text", "longtext", "mediumtext", "tinytext", "json"}, dataType: LongText},
}

// MapPostgres maps a PostgreSQL type name. Array types ("integer[]",
// "ARRAY") map to Array; unknown names map to ShortText.
func MapPostgres(typeName string) DataType {
	name := strings.ToLower(strings.TrimSpace(typeName))
	if strings.HasPrefix(name, "array") || strings.Contains(name, "[]") {
		return Array
	}
	return mapRules(postgresRules, name)
}

// MapMySQL maps a MySQL type name. tinyint(1) is a boolean; unknown names map
// to ShortText.
func MapMySQL(typeName string) DataType {
	return mapRules(mysqlRules, strings.ToLower(strings.TrimSpace(typeName)))
}

func mapRules(rules []typeRule, name string) DataType {
	for _, r := range rules {
		if r.match(name) {
			return r.dataType
		}
	}
	return ShortText
}
