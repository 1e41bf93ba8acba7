// Package ui provides the runner that opens the terminal browser.
package ui

import (
	"context"
	"errors"
	"log/slog"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
	teaui "tableflip.dev/dbgrid/pkg/tui/app"
)

// UI opens the browser on Service.
type UI struct {
	Service   *app.Service
	Table     string
	PageSize  int
	RowHeight virtual.RowHeight
	Overscan  int
	Watch     bool
	Logger    *slog.Logger
}

func (u *UI) Do(ctx context.Context) error {
	if u.Service == nil {
		return errors.New("can not open the browser, no service")
	}
	log := u.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("browser starting", "table", u.Table, "page_size", u.PageSize, "row_height", u.RowHeight)
	err := teaui.Run(ctx, u.Service, teaui.Options{
		Table:     u.Table,
		PageSize:  u.PageSize,
		RowHeight: u.RowHeight,
		Overscan:  u.Overscan,
		Watch:     u.Watch,
		Logger:    log,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("browser closed")
	return nil
}
