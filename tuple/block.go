package tuple

import (
	"encoding/binary"
	"fmt"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/bits"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

// block payload layout, before compression

// *--------------------------------*
// | row lengths, u16 (repeated)    |
// *--------------------------------*
// | values, or packed bitfields    |
// *--------------------------------*

type number interface {
	int32 | uint32 | float32
}

// decodedBlock holds the values of one block of one column
type decodedBlock struct {
	rows int

	// offsets[i]..offsets[i+1] are the values of row i, repeated columns only
	offsets []int

	f32   []float32
	i32   []int32
	u32   []uint32
	flags []bool
}

func (b *decodedBlock) span(local int, repeated bool) (int, int) {
	if !repeated {
		return local, local + 1
	}
	return b.offsets[local], b.offsets[local+1]
}

func encodeBlock(info schema.Column, lengths []uint16, numbers []float64, flags []bool) ([]byte, schema.BoundsFloat, error) {

	raw := make([]byte, 0, len(lengths)*2+len(numbers)*4)
	for _, l := range lengths {
		raw = binary.LittleEndian.AppendUint16(raw, l)
	}

	var bounds schema.BoundsFloat

	switch info.Type {
	case schema.Float32FieldType:
		values := convertNumbers[float32](numbers)
		bounds = schema.GetMaxMinBoundsFloat(values)
		raw = append(raw, bits.ArrayBytes(values)...)
	case schema.Int32FieldType:
		values := convertNumbers[int32](numbers)
		bounds = schema.GetMaxMinBoundsFloat(values)
		raw = append(raw, bits.ArrayBytes(values)...)
	case schema.Uint32FieldType:
		values := convertNumbers[uint32](numbers)
		bounds = schema.GetMaxMinBoundsFloat(values)
		raw = append(raw, bits.ArrayBytes(values)...)
	case schema.BoolFieldType:
		bounds = schema.GetMaxMinBoundsBool(flags)
		raw = append(raw, bits.PackBools(flags)...)
	default:
		return nil, bounds, fmt.Errorf("unsupported column type %s for %s", info.Type.String(), info.Name)
	}

	return raw, bounds, nil
}

// decodeInto reuses the buffers of out
func decodeInto(out *decodedBlock, info schema.Column, header *schema.DiskHeader, raw []byte) error {

	rows := int(header.Items)
	values := int(header.Values)
	out.rows = rows

	if info.Repeated {
		lengthsSize := rows * 2
		if len(raw) < lengthsSize {
			return bits.ErrReadMismatch
		}

		out.offsets = resize(out.offsets, rows+1)
		out.offsets[0] = 0
		for i := 0; i < rows; i++ {
			out.offsets[i+1] = out.offsets[i] + int(binary.LittleEndian.Uint16(raw[i*2:]))
		}

		if out.offsets[rows] != values {
			return fmt.Errorf("row lengths sum %d does not match %d values", out.offsets[rows], values)
		}
		raw = raw[lengthsSize:]
	}

	switch info.Type {
	case schema.Float32FieldType:
		out.f32 = resize(out.f32, values)
		return bits.CopyBytesToArray(raw, out.f32)
	case schema.Int32FieldType:
		out.i32 = resize(out.i32, values)
		return bits.CopyBytesToArray(raw, out.i32)
	case schema.Uint32FieldType:
		out.u32 = resize(out.u32, values)
		return bits.CopyBytesToArray(raw, out.u32)
	case schema.BoolFieldType:
		out.flags = resize(out.flags, values)
		return bits.UnpackBools(raw, out.flags)
	default:
		return fmt.Errorf("unsupported column type %s", info.Type.String())
	}
}

func resize[T any](buf []T, n int) []T {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]T, n)
}

func convertNumbers[T number](in []float64) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}

func convertInto[D number, S number](out []D, src []S) {
	for i := range min(len(out), len(src)) {
		out[i] = D(src[i])
	}
}

func readNumbers[T number](info schema.Column, b *decodedBlock, start, end int, out []T) {
	switch info.Type {
	case schema.Float32FieldType:
		convertInto(out, b.f32[start:end])
	case schema.Int32FieldType:
		convertInto(out, b.i32[start:end])
	case schema.Uint32FieldType:
		convertInto(out, b.u32[start:end])
	case schema.BoolFieldType:
		for i, v := range b.flags[start:min(end, start+len(out))] {
			if v {
				out[i] = 1
			} else {
				out[i] = 0
			}
		}
	}
}

func readFlags(info schema.Column, b *decodedBlock, start, end int, out []bool) {
	n := min(end-start, len(out))
	for i := range n {
		switch info.Type {
		case schema.Float32FieldType:
			out[i] = b.f32[start+i] != 0
		case schema.Int32FieldType:
			out[i] = b.i32[start+i] != 0
		case schema.Uint32FieldType:
			out[i] = b.u32[start+i] != 0
		case schema.BoolFieldType:
			out[i] = b.flags[start+i]
		}
	}
}
