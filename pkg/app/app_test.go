package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"tableflip.dev/dbgrid/pkg/grid"
	"tableflip.dev/dbgrid/pkg/schema"
	"tableflip.dev/dbgrid/pkg/store"
)

type memoryPersistence struct {
	mu      sync.Mutex
	schemas map[string]*schema.Table
	rows    map[string]map[int64]map[string]any
}

func newMemoryPersistence(tables ...*schema.Table) *memoryPersistence {
	mp := &memoryPersistence{
		schemas: map[string]*schema.Table{},
		rows:    map[string]map[int64]map[string]any{},
	}
	for _, t := range tables {
		if err := mp.CreateTable(t); err != nil {
			panic(err)
		}
	}
	return mp
}

func (m *memoryPersistence) Tables(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.schemas)), nil
}

func (m *memoryPersistence) Schema(table string) (*schema.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.schemas[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, table)
	}
	cp := *t
	cp.Columns = slices.Clone(t.Columns)
	return &cp, nil
}

func (m *memoryPersistence) CreateTable(t *schema.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas[t.Name] = t
	if m.rows[t.Name] == nil {
		m.rows[t.Name] = map[int64]map[string]any{}
	}
	return nil
}

func (m *memoryPersistence) DropTable(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemas[table]; !ok {
		return fmt.Errorf("%w: %s", store.ErrTableNotFound, table)
	}
	delete(m.schemas, table)
	delete(m.rows, table)
	return nil
}

func (m *memoryPersistence) Rows(_ context.Context, table string) ([]store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, table)
	}
	out := make([]store.Record, 0, len(rows))
	for _, id := range slices.Sorted(maps.Keys(rows)) {
		out = append(out, store.Record{ID: id, Values: maps.Clone(rows[id])})
	}
	return out, nil
}

func (m *memoryPersistence) Count(_ context.Context, table string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[table]), nil
}

func (m *memoryPersistence) Get(table string, id int64) (store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[table][id]
	if !ok {
		return store.Record{}, fmt.Errorf("%w: %s/%d", store.ErrRowNotFound, table, id)
	}
	return store.Record{ID: id, Values: maps.Clone(v)}, nil
}

func (m *memoryPersistence) Put(table string, rec store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[table]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrTableNotFound, table)
	}
	rows[rec.ID] = maps.Clone(rec.Values)
	return nil
}

func (m *memoryPersistence) Insert(_ context.Context, table string, values map[string]any) (store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[table]
	if !ok {
		return store.Record{}, fmt.Errorf("%w: %s", store.ErrTableNotFound, table)
	}
	var next int64 = 1
	for id := range rows {
		next = max(next, id+1)
	}
	rows[next] = maps.Clone(values)
	return store.Record{ID: next, Values: values}, nil
}

func (m *memoryPersistence) Delete(table string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[table][id]; !ok {
		return fmt.Errorf("%w: %s/%d", store.ErrRowNotFound, table, id)
	}
	delete(m.rows[table], id)
	return nil
}

func (m *memoryPersistence) Watch(context.Context) (<-chan store.Event, error) {
	return nil, nil
}

func usersTable() *schema.Table {
	def := "true"
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", DataTypeLabel: "integer", IsPrimaryKey: true},
			{Name: "name", DataTypeLabel: "varchar(255)"},
			{Name: "age", DataTypeLabel: "integer", IsNullable: true},
			{Name: "active", DataTypeLabel: "boolean", ColumnDefault: &def},
		},
	}
}

func seedUsers(t *testing.T, svc *Service, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := svc.InsertRow(context.Background(), "users", map[string]any{
			"name":   fmt.Sprintf("user%02d", i),
			"age":    int64(20 + i%7),
			"active": i%2 == 0,
		})
		if err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
	}
}

func TestServiceRequiresPersistence(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Tables(context.Background()); err == nil {
		t.Fatal("expected error without persistence")
	}
}

func TestAddRowUsesDefaults(t *testing.T) {
	mp := newMemoryPersistence(usersTable())
	svc := &Service{Persistence: mp}

	rec, err := svc.AddRow(context.Background(), "users")
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if rec.Values["id"] != rec.ID {
		t.Fatalf("primary key = %v, want %d", rec.Values["id"], rec.ID)
	}
	if rec.Values["active"] != true {
		t.Fatalf("active default = %v", rec.Values["active"])
	}
	if rec.Values["age"] != nil {
		t.Fatalf("nullable age = %v, want nil", rec.Values["age"])
	}
	if rec.Values["name"] != "" {
		t.Fatalf("name = %v, want empty", rec.Values["name"])
	}
	stored, err := mp.Get("users", rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Values["id"] != rec.ID {
		t.Fatalf("stored primary key = %v", stored.Values["id"])
	}
}

func TestAddRowUnknownTable(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence()}
	_, err := svc.AddRow(context.Background(), "missing")
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("err = %v, want ErrTableNotFound", err)
	}
	if !errors.Is(err, store.ErrTableNotFound) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestUpdateCellCoercesText(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 1)
	ctx := context.Background()

	rec, err := svc.UpdateCell(ctx, "users", 1, "age", "42")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Values["age"] != int64(42) {
		t.Fatalf("age = %#v, want int64(42)", rec.Values["age"])
	}
	if _, err := svc.UpdateCell(ctx, "users", 1, "age", "forty"); err == nil {
		t.Fatal("expected coercion error")
	}
	rec, err = svc.UpdateCell(ctx, "users", 1, "age", "")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rec.Values["age"] != nil {
		t.Fatalf("age = %v, want nil", rec.Values["age"])
	}
	if _, err := svc.UpdateCell(ctx, "users", 1, "nope", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
	if _, err := svc.UpdateCell(ctx, "users", 99, "name", "x"); !errors.Is(err, store.ErrRowNotFound) {
		t.Fatalf("err = %v, want ErrRowNotFound", err)
	}
}

func TestUpdateRowMapsIndexToID(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 5)
	ctx := context.Background()

	page, err := svc.Page(ctx, Query{Table: "users", PageSize: 2, Page: 2})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	rec, err := svc.UpdateRow(ctx, page, grid.Update{RowIndex: 1, ColumnID: "name", Value: "renamed"})
	if err != nil {
		t.Fatalf("update row: %v", err)
	}
	if rec.ID != 4 {
		t.Fatalf("updated id = %d, want 4", rec.ID)
	}
	if _, err := svc.UpdateRow(ctx, page, grid.Update{RowIndex: 2, ColumnID: "name"}); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("err = %v, want ErrRowOutOfRange", err)
	}
}

// slowReads widens the window between reading and writing a row.
type slowReads struct {
	*memoryPersistence
}

func (s slowReads) Get(table string, id int64) (store.Record, error) {
	time.Sleep(time.Millisecond)
	return s.memoryPersistence.Get(table, id)
}

func TestConcurrentUpdatesToOneRow(t *testing.T) {
	svc := &Service{Persistence: slowReads{newMemoryPersistence(usersTable())}}
	seedUsers(t, svc, 1)
	ctx := context.Background()

	for trial := 0; trial < 20; trial++ {
		name := fmt.Sprintf("name%d", trial)
		var wg sync.WaitGroup
		errs := make(chan error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateCell(ctx, "users", 1, "name", name)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.UpdateCell(ctx, "users", 1, "age", int64(trial))
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("update: %v", err)
			}
		}
		rec, err := svc.Persistence.Get("users", 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if rec.Values["name"] != name || rec.Values["age"] != int64(trial) {
			t.Fatalf("trial %d: row = %v, want both writes", trial, rec.Values)
		}
	}
}

func TestPagePagination(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 250)
	ctx := context.Background()

	page, err := svc.Page(ctx, Query{Table: "users"})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.PageSize != DefaultPageSize || page.TotalRows != 250 || page.TotalPages != 3 {
		t.Fatalf("meta = %d/%d/%d", page.PageSize, page.TotalRows, page.TotalPages)
	}
	if len(page.Rows) != 100 || page.IDs[0] != 1 {
		t.Fatalf("first page rows=%d first id=%d", len(page.Rows), page.IDs[0])
	}
	if page.HasPrev() || !page.HasNext() {
		t.Fatal("first page navigation flags wrong")
	}

	last, err := svc.Page(ctx, Query{Table: "users", Page: 9})
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if last.Page != 3 || len(last.Rows) != 50 || last.IDs[0] != 201 {
		t.Fatalf("last page = %d rows=%d first=%d", last.Page, len(last.Rows), last.IDs[0])
	}
	if last.HasNext() {
		t.Fatal("last page has next")
	}
	if got, want := last.Label(), "page 3 of 3 (250 rows)"; got != want {
		t.Fatalf("label = %q, want %q", got, want)
	}
}

func TestPageEmptyTable(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	page, err := svc.Page(context.Background(), Query{Table: "users", Page: 3})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Page != 1 || page.TotalPages != 0 || len(page.Rows) != 0 {
		t.Fatalf("empty page = %+v", page)
	}
	if len(page.Columns) != 4 {
		t.Fatalf("columns = %d, want 4", len(page.Columns))
	}
}

func TestPageFilter(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 10)
	svc.UpdateCell(context.Background(), "users", 3, "age", nil)

	tests := []struct {
		filter string
		want   []int64
	}{
		{filter: "active", want: []int64{2, 4, 6, 8, 10}},
		{filter: `name == "user03"`, want: []int64{3}},
		{filter: "age > 25", want: []int64{6}},
		{filter: "id >= 9", want: []int64{9, 10}},
		{filter: "age == nil", want: []int64{3}},
		{filter: "missing == 1", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			page, err := svc.Page(context.Background(), Query{Table: "users", Filter: tt.filter})
			if err != nil {
				t.Fatalf("page: %v", err)
			}
			if !slices.Equal(page.IDs, tt.want) {
				t.Fatalf("ids = %v, want %v", page.IDs, tt.want)
			}
		})
	}

	if _, err := svc.Page(context.Background(), Query{Table: "users", Filter: "age >"}); err == nil {
		t.Fatal("expected compile error")
	}
	if err := ValidateFilter("age > 1 &&"); err == nil {
		t.Fatal("expected ValidateFilter error")
	}
	if err := ValidateFilter(""); err != nil {
		t.Fatalf("empty filter: %v", err)
	}
}

func TestPageSort(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 6)
	ctx := context.Background()
	svc.UpdateCell(ctx, "users", 2, "age", nil)

	page, err := svc.Page(ctx, Query{Table: "users", Sort: []grid.SortEntry{{ColumnID: "age"}}})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	// ages: 1→21 2→nil 3→23 4→24 5→25 6→26
	if want := []int64{2, 1, 3, 4, 5, 6}; !slices.Equal(page.IDs, want) {
		t.Fatalf("asc = %v, want %v", page.IDs, want)
	}

	page, err = svc.Page(ctx, Query{Table: "users", Sort: []grid.SortEntry{{ColumnID: "name", Desc: true}}})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if want := []int64{6, 5, 4, 3, 2, 1}; !slices.Equal(page.IDs, want) {
		t.Fatalf("desc = %v, want %v", page.IDs, want)
	}

	page, err = svc.Page(ctx, Query{Table: "users", Sort: []grid.SortEntry{{ColumnID: "active"}}})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if want := []int64{1, 3, 5, 2, 4, 6}; !slices.Equal(page.IDs, want) {
		t.Fatalf("bool sort = %v, want %v", page.IDs, want)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{nil, nil, 0},
		{nil, int64(1), -1},
		{"a", nil, 1},
		{int64(2), 10.5, -1},
		{false, true, -1},
		{"Bob", "alice", 1},
		{"x", "x", 0},
	}
	for _, tt := range tests {
		if got := compareValues(tt.a, tt.b); got != tt.want {
			t.Errorf("compareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDeleteRow(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 2)
	ctx := context.Background()
	if err := svc.DeleteRow(ctx, "users", 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page, _ := svc.Page(ctx, Query{Table: "users"})
	if !slices.Equal(page.IDs, []int64{2}) {
		t.Fatalf("ids = %v", page.IDs)
	}
	if err := svc.DeleteRow(ctx, "users", 1); !errors.Is(err, store.ErrRowNotFound) {
		t.Fatalf("err = %v, want ErrRowNotFound", err)
	}
}

func TestInsertRowUnknownColumn(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	_, err := svc.InsertRow(context.Background(), "users", map[string]any{"email": "x"})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
}

func TestExportImportXLSX(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence(usersTable())}
	seedUsers(t, svc, 4)
	ctx := context.Background()

	var buf bytes.Buffer
	n, err := svc.ExportXLSX(ctx, Query{Table: "users", Filter: "active"}, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d rows, want 2", n)
	}

	copyTable := usersTable()
	copyTable.Name = "users_copy"
	if err := svc.CreateTable(ctx, copyTable); err != nil {
		t.Fatalf("create: %v", err)
	}
	n, err = svc.ImportXLSX(ctx, "users_copy", &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d rows, want 2", n)
	}
	page, err := svc.Page(ctx, Query{Table: "users_copy"})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if got := page.Rows[0]["name"]; got != "user02" {
		t.Fatalf("name = %v, want user02", got)
	}
	if got := page.Rows[1]["age"]; got != int64(24) {
		t.Fatalf("age = %#v, want int64(24)", got)
	}
	if got := page.Rows[0]["active"]; got != true {
		t.Fatalf("active = %v, want true", got)
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"users", "users"},
		{"a/b:c", "a_b_c"},
		{"", "Sheet1"},
		{"a_very_long_table_name_exceeding_limits", "a_very_long_table_name_exceedin"},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
