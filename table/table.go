package table

import (
	"errors"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyTable     = errors.New("table has no rows")
	ErrRowOutOfRange  = errors.New("row out of range")
	ErrTypeMismatch   = errors.New("value type does not match column")
)

// Table is a sequential source of rows with named typed columns
type Table interface {
	Name() string
	Rows() int
	Columns() []schema.Column
	Column(name string) (Column, error)
	Close() error
}

// Column reads one field row by row. Typed reads convert from the stored type,
// fill as much of out as fits and return the full logical length of the row.
type Column interface {
	Info() schema.Column

	// Bounds scans the whole column, repeated columns include every value
	Bounds() (schema.BoundsFloat, error)

	Float32s(row int, out []float32) (int, error)
	Int32s(row int, out []int32) (int, error)
	Uint32s(row int, out []uint32) (int, error)
	Bools(row int, out []bool) (int, error)
}

// RowWriter receives rows column by column, unset columns are written as zero or empty
type RowWriter interface {
	Set(name string, value any) error
	EndRow() error
}
