package store

import (
	"fmt"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/table"
)

// Value is a primitive a column can be activated as
type Value interface {
	int32 | uint32 | float32 | bool
}

type binder interface {
	load(row int) error
}

// Scalar holds one value of the current row
type Scalar[T Value] struct {
	name string
	col  table.Column
	buf  [1]T
}

func (s *Scalar[T]) Name() string {
	return s.name
}

func (s *Scalar[T]) Get() T {
	return s.buf[0]
}

func (s *Scalar[T]) load(row int) error {
	n, err := read(s.col, row, s.buf[:])
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", s.name, err)
	}
	if n == 0 {
		var zero T
		s.buf[0] = zero
	}
	return nil
}

// Array holds up to Cap values of the current row, the rest is truncated
type Array[T Value] struct {
	name string
	col  table.Column
	buf  []T
	n    int
}

func (a *Array[T]) Name() string {
	return a.name
}

// Len is the number of values kept for the current row
func (a *Array[T]) Len() int {
	return a.n
}

func (a *Array[T]) Cap() int {
	return len(a.buf)
}

// At returns zero for slots the current row does not fill
func (a *Array[T]) At(i int) T {
	return a.buf[i]
}

func (a *Array[T]) Values() []T {
	return a.buf[:a.n]
}

func (a *Array[T]) load(row int) error {
	n, err := read(a.col, row, a.buf)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", a.name, err)
	}

	a.n = min(n, len(a.buf))
	clear(a.buf[a.n:])
	return nil
}

func read[T Value](col table.Column, row int, out []T) (int, error) {
	switch o := any(out).(type) {
	case []float32:
		return col.Float32s(row, o)
	case []int32:
		return col.Int32s(row, o)
	case []uint32:
		return col.Uint32s(row, o)
	case []bool:
		return col.Bools(row, o)
	default:
		return 0, fmt.Errorf("unsupported buffer %T", out)
	}
}

// ActivateScalar binds a scalar column to the cursor
func ActivateScalar[T Value](s *Store, name string) (*Scalar[T], error) {
	col, err := s.source.Column(name)
	if err != nil {
		return nil, fmt.Errorf("unable to activate %s: %w", name, err)
	}

	h := &Scalar[T]{name: name, col: col}
	s.binders = append(s.binders, h)
	return h, nil
}

// ActivateArray binds a collection column with room for maxSlots values per row
func ActivateArray[T Value](s *Store, name string, maxSlots int) (*Array[T], error) {
	if maxSlots < 0 {
		return nil, fmt.Errorf("unable to activate %s: negative capacity %d", name, maxSlots)
	}

	col, err := s.source.Column(name)
	if err != nil {
		return nil, fmt.Errorf("unable to activate %s: %w", name, err)
	}

	h := &Array[T]{name: name, col: col, buf: make([]T, maxSlots)}
	s.binders = append(s.binders, h)
	return h, nil
}

// activator keeps the first activation error so bindings read as a flat list
type activator struct {
	s   *Store
	err error
}

func scalar[T Value](a *activator, name string) *Scalar[T] {
	if a.err != nil {
		return nil
	}
	h, err := ActivateScalar[T](a.s, name)
	a.err = err
	return h
}

func array[T Value](a *activator, name string, slots int) *Array[T] {
	if a.err != nil {
		return nil
	}
	h, err := ActivateArray[T](a.s, name, slots)
	a.err = err
	return h
}
