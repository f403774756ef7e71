package arrowtable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

// Builder collects rows into an arrow record batch
type Builder struct {
	mem     memory.Allocator
	layout  []schema.Column
	schema  *arrow.Schema
	builder *array.RecordBuilder

	byName  map[string]int
	current []any
	rows    int
}

func NewBuilder(mem memory.Allocator, layout []schema.Column) (*Builder, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	s, err := Schema(layout)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		mem:     mem,
		layout:  layout,
		schema:  s,
		builder: array.NewRecordBuilder(mem, s),
		byName:  make(map[string]int, len(layout)),
		current: make([]any, len(layout)),
	}

	for i, col := range layout {
		b.byName[col.Name] = i
	}

	return b, nil
}

func (b *Builder) Set(name string, value any) error {
	idx, ok := b.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", table.ErrColumnNotFound, name)
	}
	b.current[idx] = value
	return nil
}

func (b *Builder) EndRow() error {
	for i, col := range b.layout {
		appendErr := appendValue(b.builder.Field(i), col, b.current[i])
		b.current[i] = nil

		if appendErr != nil {
			return fmt.Errorf("unable to append row %d: %w", b.rows, appendErr)
		}
	}

	b.rows++
	return nil
}

// Rows not yet taken by NewRecord
func (b *Builder) Rows() int {
	return b.rows
}

func (b *Builder) Schema() *arrow.Schema {
	return b.schema
}

// NewRecord takes the collected rows, the caller releases the record
func (b *Builder) NewRecord() arrow.Record {
	b.rows = 0
	return b.builder.NewRecord()
}

// Table turns the collected rows into a single batch table
func (b *Builder) Table(name string) (*Table, error) {
	rec := b.NewRecord()
	defer rec.Release()

	return FromRecords(name, rec)
}

func (b *Builder) Release() {
	b.builder.Release()
}

func appendValue(fb array.Builder, col schema.Column, value any) error {
	if !col.Repeated {
		if value == nil {
			value = false
			if col.Type != schema.BoolFieldType {
				value = 0
			}
		}
		return appendPrimitives(fb, col, value, 1)
	}

	lb, ok := fb.(*array.ListBuilder)
	if !ok {
		return fmt.Errorf("column %s has no list builder", col.Name)
	}

	lb.Append(true)
	if value == nil {
		return nil
	}
	return appendPrimitives(lb.ValueBuilder(), col, value, -1)
}

// appendPrimitives appends converted values, expected < 0 accepts any count
func appendPrimitives(fb array.Builder, col schema.Column, value any, expected int) error {
	if col.Type == schema.BoolFieldType {
		flags, err := table.Flags(value)
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name, err)
		}
		if expected >= 0 && len(flags) != expected {
			return fmt.Errorf("%w: column %s got %d values", table.ErrTypeMismatch, col.Name, len(flags))
		}

		bb, ok := fb.(*array.BooleanBuilder)
		if !ok {
			return fmt.Errorf("column %s has no boolean builder", col.Name)
		}
		for _, f := range flags {
			bb.Append(f)
		}
		return nil
	}

	numbers, err := table.Numbers(value)
	if err != nil {
		return fmt.Errorf("column %s: %w", col.Name, err)
	}
	if expected >= 0 && len(numbers) != expected {
		return fmt.Errorf("%w: column %s got %d values", table.ErrTypeMismatch, col.Name, len(numbers))
	}

	switch nb := fb.(type) {
	case *array.Float32Builder:
		for _, v := range numbers {
			nb.Append(float32(v))
		}
	case *array.Float64Builder:
		for _, v := range numbers {
			nb.Append(v)
		}
	case *array.Int32Builder:
		for _, v := range numbers {
			nb.Append(int32(v))
		}
	case *array.Int64Builder:
		for _, v := range numbers {
			nb.Append(int64(v))
		}
	case *array.Uint32Builder:
		for _, v := range numbers {
			nb.Append(uint32(v))
		}
	case *array.Uint64Builder:
		for _, v := range numbers {
			nb.Append(uint64(v))
		}
	default:
		return fmt.Errorf("column %s: unsupported builder %T", col.Name, fb)
	}

	return nil
}
