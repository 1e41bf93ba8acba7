package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/schema"
)

// Demo seeds a store with sample tables to try the browser on.
type Demo struct {
	Service *app.Service
	// Rows is the number of generated people.
	Rows int
	Out  io.Writer
}

var demoFirst = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Radia", "Dennis", "Frances", "Linus"}
var demoLast = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Perlman", "Ritchie", "Allen", "Torvalds"}

// DemoTables returns the sample schemas.
func DemoTables() []*schema.Table {
	def := func(s string) *string { return &s }
	return []*schema.Table{
		{Name: "people", Columns: []schema.Column{
			{Name: "id", DataTypeLabel: "serial", IsPrimaryKey: true},
			{Name: "name", DataTypeLabel: "varchar(80)"},
			{Name: "age", DataTypeLabel: "integer", IsNullable: true},
			{Name: "active", DataTypeLabel: "boolean", ColumnDefault: def("true")},
			{Name: "bio", DataTypeLabel: "text", IsNullable: true},
			{Name: "tags", DataTypeLabel: "text[]", IsNullable: true},
		}},
		{Name: "teams", Columns: []schema.Column{
			{Name: "id", DataTypeLabel: "serial", IsPrimaryKey: true},
			{Name: "title", DataTypeLabel: "varchar(40)"},
			{Name: "lead", DataTypeLabel: "integer", IsNullable: true,
				IsForeignKey: true, ReferencedTable: "people", ReferencedColumn: "id"},
		}},
	}
}

func (d *Demo) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not seed, no service")
	}
	n := d.Rows
	if n <= 0 {
		n = 250
	}
	for _, t := range DemoTables() {
		if err := d.Service.CreateTable(ctx, t); err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}
	}
	for i := range n {
		first := demoFirst[i%len(demoFirst)]
		last := demoLast[(i/len(demoFirst))%len(demoLast)]
		values := map[string]any{
			"name": first + " " + last,
			"age":  fmt.Sprint(20 + (i*7)%50),
		}
		if i%3 == 0 {
			values["bio"] = fmt.Sprintf("%s %s joined in %d.\nLikes compilers and long walks.", first, last, 1970+i%50)
		}
		if i%4 == 0 {
			values["tags"] = "{go,terminal}"
		}
		if i%5 == 0 {
			values["active"] = "false"
		}
		if _, err := d.Service.InsertRow(ctx, "people", values); err != nil {
			return err
		}
	}
	for i, title := range []string{"runtime", "storage", "compilers", "networking"} {
		if _, err := d.Service.InsertRow(ctx, "teams", map[string]any{"title": title, "lead": fmt.Sprint(i + 1)}); err != nil {
			return err
		}
	}

	out := d.Out
	if out == nil {
		out = color.Output
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "seeded %d people and 4 teams\n", n)
	return nil
}
