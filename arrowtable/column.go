package arrowtable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

type number interface {
	int32 | uint32 | float32 | float64
}

type Column struct {
	t    *Table
	idx  int
	info schema.Column
}

func (c *Column) Info() schema.Column {
	return c.info
}

// values returns the array holding the row and the row's value range in it
func (c *Column) values(row int) (arrow.Array, int, int, error) {
	batch, local, err := c.t.locate(row)
	if err != nil {
		return nil, 0, 0, err
	}

	arr := c.t.records[batch].Column(c.idx)

	if !c.info.Repeated {
		return arr, local, local + 1, nil
	}

	list, ok := arr.(*array.List)
	if !ok {
		return nil, 0, 0, fmt.Errorf("column %s is not a list array", c.info.Name)
	}
	if list.IsNull(local) {
		return list.ListValues(), 0, 0, nil
	}

	start, end := list.ValueOffsets(local)
	return list.ListValues(), int(start), int(end), nil
}

func (c *Column) Float32s(row int, out []float32) (int, error) {
	return readNumbers(c, row, out)
}

func (c *Column) Int32s(row int, out []int32) (int, error) {
	return readNumbers(c, row, out)
}

func (c *Column) Uint32s(row int, out []uint32) (int, error) {
	return readNumbers(c, row, out)
}

func (c *Column) Bools(row int, out []bool) (int, error) {
	values, start, end, err := c.values(row)
	if err != nil {
		return 0, err
	}

	n := min(end-start, len(out))
	if b, ok := values.(*array.Boolean); ok {
		for i := range n {
			out[i] = b.Value(start + i)
		}
		return end - start, nil
	}

	numbers := make([]float64, n)
	if err := fillNumbers(values, start, numbers); err != nil {
		return 0, fmt.Errorf("column %s: %s", c.info.Name, err.Error())
	}
	for i, v := range numbers {
		out[i] = v != 0
	}
	return end - start, nil
}

func readNumbers[T number](c *Column, row int, out []T) (int, error) {
	values, start, end, err := c.values(row)
	if err != nil {
		return 0, err
	}

	n := min(end-start, len(out))
	if err := fillNumbers(values, start, out[:n]); err != nil {
		return 0, fmt.Errorf("column %s: %s", c.info.Name, err.Error())
	}
	return end - start, nil
}

// Bounds scans every value of every batch
func (c *Column) Bounds() (schema.BoundsFloat, error) {
	result := schema.BoundsFloat{}
	seen := false

	for _, rec := range c.t.records {
		values := rec.Column(c.idx)
		if list, ok := values.(*array.List); ok {
			values = list.ListValues()
		}
		if values.Len() == 0 {
			continue
		}

		numbers := make([]float64, values.Len())
		if err := fillNumbers(values, 0, numbers); err != nil {
			return result, fmt.Errorf("column %s: %s", c.info.Name, err.Error())
		}

		b := schema.GetMaxMinBoundsFloat(numbers)
		if !seen {
			result = b
			seen = true
			continue
		}
		result.Morph(b)
	}

	return result, nil
}

// fillNumbers converts len(out) values starting at start, nulls read as zero
func fillNumbers[T number](values arrow.Array, start int, out []T) error {
	switch v := values.(type) {
	case *array.Float32:
		copyConverted(out, start, v.Value)
	case *array.Float64:
		copyConverted(out, start, v.Value)
	case *array.Int8:
		copyConverted(out, start, v.Value)
	case *array.Int16:
		copyConverted(out, start, v.Value)
	case *array.Int32:
		copyConverted(out, start, v.Value)
	case *array.Int64:
		copyConverted(out, start, v.Value)
	case *array.Uint8:
		copyConverted(out, start, v.Value)
	case *array.Uint16:
		copyConverted(out, start, v.Value)
	case *array.Uint32:
		copyConverted(out, start, v.Value)
	case *array.Uint64:
		copyConverted(out, start, v.Value)
	case *array.Boolean:
		for i := range out {
			if v.Value(start + i) {
				out[i] = 1
			} else {
				out[i] = 0
			}
		}
	default:
		return fmt.Errorf("unsupported array type %s", values.DataType().String())
	}

	for i := range out {
		if values.IsNull(start + i) {
			out[i] = 0
		}
	}

	return nil
}

type source interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func copyConverted[T number, S source](out []T, start int, get func(int) S) {
	for i := range out {
		out[i] = T(get(start + i))
	}
}
