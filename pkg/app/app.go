package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"tableflip.dev/dbgrid/pkg/grid"
	"tableflip.dev/dbgrid/pkg/schema"
	"tableflip.dev/dbgrid/pkg/store"
)

// Service provides high-level operations over stored tables.
// It wraps persistence and value coercion so UIs and CLIs can share logic.
type Service struct {
	Persistence store.Persistence
	Logger      *slog.Logger

	// rows serializes read-modify-write cycles on stored rows.
	rows sync.Mutex
}

var (
	// ErrTableNotFound is returned when the named table has no schema.
	ErrTableNotFound = errors.New("app: table not found")
	// ErrRowOutOfRange is returned for a row index outside the loaded page.
	ErrRowOutOfRange = errors.New("app: row out of range")
	// ErrUnknownColumn is returned when a column is not part of the schema.
	ErrUnknownColumn = errors.New("app: unknown column")
)

var errNoPersistence = errors.New("app: no persistence configured")

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Tables returns sorted table names.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Tables(ctx)
}

// Schema returns the normalized schema of table.
func (s *Service) Schema(ctx context.Context, table string) (*schema.Table, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := s.Persistence.Schema(table)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// Columns returns the column metadata of table.
func (s *Service) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	t, err := s.Schema(ctx, table)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// CreateTable stores a new table schema. An existing table is replaced.
func (s *Service) CreateTable(ctx context.Context, t *schema.Table) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Persistence.CreateTable(t); err != nil {
		return err
	}
	s.log().Info("table created", "table", t.Name, "columns", len(t.Columns))
	return nil
}

// DropTable removes a table and all of its rows.
func (s *Service) DropTable(ctx context.Context, table string) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	return translate(s.Persistence.DropTable(ctx, table))
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// UpdateCell writes one value. Strings written into non-text columns are
// parsed into the column's type first.
func (s *Service) UpdateCell(ctx context.Context, table string, id int64, column string, value any) (store.Record, error) {
	t, err := s.Schema(ctx, table)
	if err != nil {
		return store.Record{}, err
	}
	col, ok := t.Column(column)
	if !ok {
		return store.Record{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
	}
	value, err = coerce(col, value)
	if err != nil {
		return store.Record{}, err
	}
	s.rows.Lock()
	defer s.rows.Unlock()
	rec, err := s.Persistence.Get(table, id)
	if err != nil {
		return store.Record{}, err
	}
	rec.Values[column] = value
	if err := s.Persistence.Put(table, rec); err != nil {
		return store.Record{}, err
	}
	s.log().Debug("cell updated", "table", table, "id", id, "column", column)
	return rec, nil
}

// UpdateRow applies a grid update against a loaded page.
func (s *Service) UpdateRow(ctx context.Context, page Page, u grid.Update) (store.Record, error) {
	if u.RowIndex < 0 || u.RowIndex >= len(page.IDs) {
		return store.Record{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, u.RowIndex)
	}
	return s.UpdateCell(ctx, page.Table, page.IDs[u.RowIndex], u.ColumnID, u.Value)
}

// AddRow inserts a row filled with column defaults. A numeric primary key
// without a default takes the row id.
func (s *Service) AddRow(ctx context.Context, table string) (store.Record, error) {
	t, err := s.Schema(ctx, table)
	if err != nil {
		return store.Record{}, err
	}
	values := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		values[c.Name] = initialValue(c)
	}
	rec, err := s.insert(ctx, t, values)
	if err != nil {
		return store.Record{}, err
	}
	s.log().Info("row added", "table", table, "id", rec.ID)
	return rec, nil
}

// InsertRow inserts values, coercing strings by column type.
func (s *Service) InsertRow(ctx context.Context, table string, values map[string]any) (store.Record, error) {
	t, err := s.Schema(ctx, table)
	if err != nil {
		return store.Record{}, err
	}
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = initialValue(c)
	}
	for k, v := range values {
		c, ok := t.Column(k)
		if !ok {
			return store.Record{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, k)
		}
		if row[k], err = coerce(c, v); err != nil {
			return store.Record{}, err
		}
	}
	return s.insert(ctx, t, row)
}

func (s *Service) insert(ctx context.Context, t *schema.Table, values map[string]any) (store.Record, error) {
	rec, err := s.Persistence.Insert(ctx, t.Name, values)
	if err != nil {
		return store.Record{}, translate(err)
	}
	pk := t.PrimaryKey()
	if pk == "" || rec.Values[pk] != nil {
		return rec, nil
	}
	if c, _ := t.Column(pk); c.DataType == schema.Number {
		rec.Values[pk] = rec.ID
		if err := s.Persistence.Put(t.Name, rec); err != nil {
			return store.Record{}, err
		}
	}
	return rec, nil
}

// DeleteRow removes the row with id.
func (s *Service) DeleteRow(ctx context.Context, table string, id int64) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(s.Persistence.Delete(table, id))
}

func coerce(c schema.Column, v any) (any, error) {
	text, ok := v.(string)
	if !ok {
		return v, nil
	}
	out, err := schema.Coerce(text, c.DataType, c.IsNullable)
	if err != nil {
		return nil, fmt.Errorf("app: column %s: %w", c.Name, err)
	}
	return out, nil
}

func initialValue(c schema.Column) any {
	if v := c.Default(); v != nil {
		return v
	}
	if c.IsNullable || c.IsPrimaryKey {
		return nil
	}
	switch c.DataType {
	case schema.Number:
		return int64(0)
	case schema.Boolean:
		return false
	case schema.Array:
		return []any{}
	case schema.ShortText, schema.LongText:
		return ""
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, store.ErrTableNotFound) {
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	}
	return err
}
