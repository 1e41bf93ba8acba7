package store

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/dbgrid/pkg/schema"
)

// ErrTableNotFound is returned for operations on a table without a schema.
var ErrTableNotFound = errors.New("store: table not found")

// ErrRowNotFound is returned when a row id does not exist.
var ErrRowNotFound = errors.New("store: row not found")

// Record is one stored row.
type Record struct {
	ID     int64
	Values map[string]any
}

// Persistence is the table storage contract.
type Persistence interface {
	Tables(ctx context.Context) ([]string, error)
	Schema(table string) (*schema.Table, error)
	CreateTable(t *schema.Table) error
	DropTable(ctx context.Context, table string) error
	Rows(ctx context.Context, table string) ([]Record, error)
	Count(ctx context.Context, table string) (int, error)
	Get(table string, id int64) (Record, error)
	Put(table string, rec Record) error
	Insert(ctx context.Context, table string, values map[string]any) (Record, error)
	Delete(table string, id int64) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Option customizes Load.
type Option func(*persistence)

// WithLogger routes store warnings, such as unreadable rows, to l.
func WithLogger(l *slog.Logger) Option {
	return func(p *persistence) { p.log = l }
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path required")
	}
	p := &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath, log: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	log      *slog.Logger
}

const (
	kindRows   = "rows"
	kindMeta   = "meta"
	schemaFile = "schema"
)

func (p *persistence) Tables(ctx context.Context) ([]string, error) {
	var names []string
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) != 2 || pk.Path[1] != kindMeta || pk.FileName != schemaFile {
			continue
		}
		name, err := fromTable(pk.Path[0])
		if err != nil {
			p.log.Warn("skipping unreadable table", "key", key, "err", err)
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, ctx.Err()
}

func (p *persistence) Schema(table string) (*schema.Table, error) {
	key := schemaKey(table)
	if !p.d.Has(key) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	data, err := p.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("store: read schema %s: %w", table, err)
	}
	t := &schema.Table{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("store: decode schema %s: %w", table, err)
	}
	t.Name = table
	t.Normalize()
	return t, nil
}

func (p *persistence) CreateTable(t *schema.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Normalize()
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := p.d.Write(schemaKey(t.Name), data); err != nil {
		return fmt.Errorf("store: write schema %s: %w", t.Name, err)
	}
	return nil
}

func (p *persistence) DropTable(ctx context.Context, table string) error {
	if !p.d.Has(schemaKey(table)) {
		return fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	for key := range p.d.KeysPrefix(toTable(table)+"-", ctx.Done()) {
		if err := p.d.Erase(key); err != nil {
			return fmt.Errorf("store: drop %s: %w", table, err)
		}
	}
	return nil
}

func (p *persistence) Rows(ctx context.Context, table string) ([]Record, error) {
	if !p.d.Has(schemaKey(table)) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	var out []Record
	for key := range p.d.KeysPrefix(rowsPrefix(table), ctx.Done()) {
		rec, err := p.read(key)
		if err != nil {
			p.log.Warn("skipping unreadable row", "key", key, "err", err)
			continue
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b Record) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, ctx.Err()
}

func (p *persistence) Count(ctx context.Context, table string) (int, error) {
	if !p.d.Has(schemaKey(table)) {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	n := 0
	for range p.d.KeysPrefix(rowsPrefix(table), ctx.Done()) {
		n++
	}
	return n, ctx.Err()
}

func (p *persistence) Get(table string, id int64) (Record, error) {
	key := rowKey(table, id)
	if !p.d.Has(key) {
		return Record{}, fmt.Errorf("%w: %s/%d", ErrRowNotFound, table, id)
	}
	return p.read(key)
}

func (p *persistence) Put(table string, rec Record) error {
	if !p.d.Has(schemaKey(table)) {
		return fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if rec.ID <= 0 {
		return fmt.Errorf("store: invalid row id %d", rec.ID)
	}
	data, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("store: encode row: %w", err)
	}
	if err := p.d.Write(rowKey(table, rec.ID), data); err != nil {
		return fmt.Errorf("store: write row: %w", err)
	}
	return nil
}

func (p *persistence) Insert(ctx context.Context, table string, values map[string]any) (Record, error) {
	if !p.d.Has(schemaKey(table)) {
		return Record{}, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	var next int64 = 1
	for key := range p.d.KeysPrefix(rowsPrefix(table), ctx.Done()) {
		if id, err := idFromKey(key); err == nil && id >= next {
			next = id + 1
		}
	}
	if values == nil {
		values = map[string]any{}
	}
	rec := Record{ID: next, Values: values}
	return rec, p.Put(table, rec)
}

func (p *persistence) Delete(table string, id int64) error {
	key := rowKey(table, id)
	if !p.d.Has(key) {
		return fmt.Errorf("%w: %s/%d", ErrRowNotFound, table, id)
	}
	return p.d.Erase(key)
}

func (p *persistence) read(key string) (Record, error) {
	data, err := p.d.Read(key)
	if err != nil {
		return Record{}, err
	}
	id, err := idFromKey(key)
	if err != nil {
		return Record{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	values := map[string]any{}
	if err := dec.Decode(&values); err != nil {
		return Record{}, err
	}
	for k, v := range values {
		values[k] = normalizeNumber(v)
	}
	return Record{ID: id, Values: values}, nil
}

// normalizeNumber turns json.Number into int64 or float64.
func normalizeNumber(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = normalizeNumber(t[i])
		}
	}
	return v
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// rowKey makes `table-rows-id`; ids are zero padded so keys sort by id.
func rowKey(table string, id int64) string {
	return fmt.Sprintf("%s%012d", rowsPrefix(table), id)
}

func rowsPrefix(table string) string {
	return toTable(table) + "-" + kindRows + "-"
}

func schemaKey(table string) string {
	return toTable(table) + "-" + kindMeta + "-" + schemaFile
}

func idFromKey(key string) (int64, error) {
	pk := keyToPathTransform(key)
	return strconv.ParseInt(pk.FileName, 10, 64)
}

// Table names are hex encoded so they are safe as directory names and never
// contain the key separator.
func toTable(s string) string {
	return hex.EncodeToString([]byte(s))
}

func fromTable(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("store: decode table dir %q: %w", s, err)
	}
	return string(b), nil
}
