package schema

import (
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/bits"
	"golang.org/x/exp/constraints"
)

type NumericTypes interface {
	constraints.Integer | constraints.Float
}

type Bounds[T NumericTypes] struct {
	Min T
	Max T
}

const BoundsSize = 8 + 8

type BoundsFloat struct {
	Min float64
	Max float64
}

func (b *BoundsFloat) Morph(other BoundsFloat) bool {

	changes := 0

	if other.Min < b.Min {
		b.Min = other.Min
		changes += 1
	}
	if other.Max > b.Max {
		b.Max = other.Max
		changes += 1
	}

	return changes != 0
}

// GetMaxMinBoundsFloat returns zero bounds for an empty array
func GetMaxMinBoundsFloat[T NumericTypes](arr []T) BoundsFloat {

	if len(arr) == 0 {
		return BoundsFloat{}
	}

	resultBounds := Bounds[T]{
		Min: arr[0],
		Max: arr[0],
	}

	for _, v := range arr[1:] {
		if v < resultBounds.Min {
			resultBounds.Min = v
		}
		if v > resultBounds.Max {
			resultBounds.Max = v
		}
	}
	return BoundsFloat{
		Min: float64(resultBounds.Min),
		Max: float64(resultBounds.Max),
	}
}

func GetMaxMinBoundsBool(arr []bool) BoundsFloat {
	result := BoundsFloat{}
	for i, v := range arr {
		f := 0.0
		if v {
			f = 1
		}
		if i == 0 {
			result = BoundsFloat{Min: f, Max: f}
			continue
		}
		result.Morph(BoundsFloat{Min: f, Max: f})
	}
	return result
}

func (header *BoundsFloat) FromBytes(reader *bits.BitsReader) (topErr error) {

	header.Max, topErr = reader.ReadF64()
	if topErr != nil {
		return topErr
	}
	header.Min, topErr = reader.ReadF64()

	return topErr
}

func (header *BoundsFloat) WriteTo(bw *bits.BitWriter) (int, error) {

	bw.PutFloat64(header.Max)
	bw.PutFloat64(header.Min)

	return bw.Position(), nil

}
