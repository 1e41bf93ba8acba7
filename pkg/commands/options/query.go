package options

import (
	"fmt"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid"
)

// QueryOptions select a page of rows.
type QueryOptions struct {
	Filter   string
	Sort     string
	Page     int
	PageSize int
}

func AddQueryArgs(cmd *cobra.Command, o *QueryOptions) {
	cmd.Flags().StringVarP(&o.Filter, "filter", "f", "",
		base.Wrap80(`Keep rows where the expression is true, example: --filter="age > 30 && active".`))
	cmd.Flags().StringVarP(&o.Sort, "sort", "s", "",
		`Sort by a column, prefix with "-" for descending, example: --sort=-age.`)
	cmd.Flags().IntVarP(&o.Page, "page", "p", 1,
		"Page to show, starting at 1.")
	cmd.Flags().IntVar(&o.PageSize, "page-size", 0,
		"Rows per page. Defaults to the configured page_size.")
}

// Query builds the app query for table.
func (o *QueryOptions) Query(table string) (app.Query, error) {
	q := app.Query{
		Table:    table,
		Page:     o.Page,
		PageSize: o.PageSize,
		Filter:   strings.TrimSpace(o.Filter),
	}
	if q.Page < 1 {
		return q, fmt.Errorf("--page must be at least 1, got %d", o.Page)
	}
	if err := app.ValidateFilter(q.Filter); err != nil {
		return q, err
	}
	if s := strings.TrimSpace(o.Sort); s != "" {
		desc := strings.HasPrefix(s, "-")
		q.Sort = []grid.SortEntry{{ColumnID: strings.TrimPrefix(s, "-"), Desc: desc}}
	}
	return q, nil
}
