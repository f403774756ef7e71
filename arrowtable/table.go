package arrowtable

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

// Table serves arrow record batches as a table.Table
type Table struct {
	name    string
	schema  *arrow.Schema
	records []arrow.Record

	// first row of every record
	starts []int
	rows   int

	layout  []schema.Column
	indices map[string]int

	closers []func() error
}

// FromRecords retains every record, they are released on Close
func FromRecords(name string, records ...arrow.Record) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s has no record batches", name)
	}

	t := &Table{
		name:    name,
		schema:  records[0].Schema(),
		indices: map[string]int{},
	}

	for i, field := range t.schema.Fields() {
		col, err := columnOf(field)
		if err != nil {
			return nil, err
		}
		t.layout = append(t.layout, col)
		t.indices[field.Name] = i
	}

	for _, rec := range records {
		if !rec.Schema().Equal(t.schema) {
			return nil, fmt.Errorf("table %s: record batches have different schemas", name)
		}
	}

	for _, rec := range records {
		rec.Retain()
		t.records = append(t.records, rec)
		t.starts = append(t.starts, t.rows)
		t.rows += int(rec.NumRows())
	}

	return t, nil
}

// Open reads an arrow IPC file, the table is named after the file
func Open(path string) (*Table, error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("unable to open %s: %s", path, openErr.Error())
	}

	reader, readerErr := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if readerErr != nil {
		f.Close()
		return nil, fmt.Errorf("unable to read arrow file %s: %s", path, readerErr.Error())
	}

	records := make([]arrow.Record, 0, reader.NumRecords())
	release := func() {
		for _, rec := range records {
			rec.Release()
		}
	}

	for i := 0; i < reader.NumRecords(); i++ {
		rec, recErr := reader.Record(i)
		if recErr != nil {
			release()
			reader.Close()
			f.Close()
			return nil, fmt.Errorf("unable to read record %d of %s: %s", i, path, recErr.Error())
		}
		rec.Retain()
		records = append(records, rec)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var t *Table
	var tableErr error
	if len(records) == 0 {
		t, tableErr = emptyTable(name, reader.Schema())
	} else {
		t, tableErr = FromRecords(name, records...)
	}
	// FromRecords holds its own references
	release()

	if tableErr != nil {
		reader.Close()
		f.Close()
		return nil, tableErr
	}

	t.closers = append(t.closers, reader.Close, f.Close)

	slog.Info("arrow table opened", "path", path, "rows", t.rows, "batches", len(t.records))

	return t, nil
}

func emptyTable(name string, s *arrow.Schema) (*Table, error) {
	t := &Table{name: name, schema: s, indices: map[string]int{}}
	for i, field := range s.Fields() {
		col, err := columnOf(field)
		if err != nil {
			return nil, err
		}
		t.layout = append(t.layout, col)
		t.indices[field.Name] = i
	}
	return t, nil
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Rows() int {
	return t.rows
}

func (t *Table) Columns() []schema.Column {
	return t.layout
}

func (t *Table) Schema() *arrow.Schema {
	return t.schema
}

func (t *Table) Column(name string) (table.Column, error) {
	idx, ok := t.indices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", table.ErrColumnNotFound, name, t.name)
	}

	return &Column{t: t, idx: idx, info: t.layout[idx]}, nil
}

func (t *Table) Close() error {
	for _, rec := range t.records {
		rec.Release()
	}
	t.records = nil

	var errs []error
	for _, closer := range t.closers {
		errs = append(errs, closer())
	}
	t.closers = nil

	return errors.Join(errs...)
}

func (t *Table) locate(row int) (int, int, error) {
	if row < 0 || row >= t.rows {
		return 0, 0, fmt.Errorf("%w: %d of %d", table.ErrRowOutOfRange, row, t.rows)
	}

	batch := sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > row }) - 1
	return batch, row - t.starts[batch], nil
}
