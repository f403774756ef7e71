package table

import (
	"fmt"
)

// Numbers converts a scalar or slice value into float64 values
func Numbers(value any) ([]float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float32:
		return []float64{float64(v)}, nil
	case float64:
		return []float64{v}, nil
	case int:
		return []float64{float64(v)}, nil
	case int32:
		return []float64{float64(v)}, nil
	case int64:
		return []float64{float64(v)}, nil
	case uint32:
		return []float64{float64(v)}, nil
	case uint64:
		return []float64{float64(v)}, nil
	case bool:
		if v {
			return []float64{1}, nil
		}
		return []float64{0}, nil
	case []float32:
		return convertSlice(v), nil
	case []float64:
		return v, nil
	case []int:
		return convertSlice(v), nil
	case []int32:
		return convertSlice(v), nil
	case []uint32:
		return convertSlice(v), nil
	case []bool:
		out := make([]float64, len(v))
		for i, b := range v {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrTypeMismatch, value)
	}
}

// Flags converts a scalar or slice value into bools, numbers are true when non zero
func Flags(value any) ([]bool, error) {
	switch v := value.(type) {
	case bool:
		return []bool{v}, nil
	case []bool:
		return v, nil
	default:
		numbers, err := Numbers(value)
		if err != nil {
			return nil, err
		}
		out := make([]bool, len(numbers))
		for i, n := range numbers {
			out[i] = n != 0
		}
		return out, nil
	}
}

func convertSlice[T int | int32 | uint32 | float32](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
