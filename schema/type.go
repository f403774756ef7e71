package schema

import "fmt"

type FieldType uint8

const (
	Int8FieldType FieldType = iota
	Int16FieldType
	Int32FieldType
	Int64FieldType

	Float64FieldType
	Float32FieldType

	Uint64FieldType
	Uint8FieldType
	Uint32FieldType
	Uint16FieldType

	BoolFieldType
)

func (f FieldType) String() string {
	switch f {
	case Int8FieldType:
		return "Int8"
	case Int16FieldType:
		return "Int16"
	case Int32FieldType:
		return "Int32"
	case Int64FieldType:
		return "Int64"
	case Float64FieldType:
		return "Float64"
	case Float32FieldType:
		return "Float32"
	case Uint64FieldType:
		return "Uint64"
	case Uint8FieldType:
		return "Uint8"
	case Uint32FieldType:
		return "Uint32"
	case Uint16FieldType:
		return "Uint16"
	case BoolFieldType:
		return "Bool"
	default:
		return fmt.Sprintf("FieldType(%d)", uint8(f))

	}
}

// Size of a single value in bytes. Bools are packed into bitfields on disk.
func (f FieldType) Size() int {
	switch f {

	case Int8FieldType, Uint8FieldType, BoolFieldType:
		return 1
	case Int16FieldType, Uint16FieldType:
		return 2
	case Int32FieldType, Float32FieldType, Uint32FieldType:
		return 4
	case Int64FieldType, Float64FieldType, Uint64FieldType:
		return 8

	default:
		panic("unknown field type " + f.String())
	}
}

// Storable reports whether the native tuple format can hold the type
func (f FieldType) Storable() bool {
	switch f {
	case Int32FieldType, Uint32FieldType, Float32FieldType, BoolFieldType:
		return true
	default:
		return false
	}
}
