package arrowtable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/schema"
)

func fieldType(dt arrow.DataType) (schema.FieldType, bool) {
	switch dt.ID() {
	case arrow.FLOAT32:
		return schema.Float32FieldType, true
	case arrow.FLOAT64:
		return schema.Float64FieldType, true
	case arrow.INT8:
		return schema.Int8FieldType, true
	case arrow.INT16:
		return schema.Int16FieldType, true
	case arrow.INT32:
		return schema.Int32FieldType, true
	case arrow.INT64:
		return schema.Int64FieldType, true
	case arrow.UINT8:
		return schema.Uint8FieldType, true
	case arrow.UINT16:
		return schema.Uint16FieldType, true
	case arrow.UINT32:
		return schema.Uint32FieldType, true
	case arrow.UINT64:
		return schema.Uint64FieldType, true
	case arrow.BOOL:
		return schema.BoolFieldType, true
	default:
		return 0, false
	}
}

// columnOf maps an arrow field to a column, lists of primitives become repeated columns
func columnOf(field arrow.Field) (schema.Column, error) {
	if list, ok := field.Type.(*arrow.ListType); ok {
		typ, supported := fieldType(list.Elem())
		if !supported {
			return schema.Column{}, fmt.Errorf("column %s: unsupported list element type %s", field.Name, list.Elem().String())
		}
		return schema.Repeated(field.Name, typ), nil
	}

	typ, supported := fieldType(field.Type)
	if !supported {
		return schema.Column{}, fmt.Errorf("column %s: unsupported type %s", field.Name, field.Type.String())
	}
	return schema.Scalar(field.Name, typ), nil
}

func dataType(typ schema.FieldType) (arrow.DataType, error) {
	switch typ {
	case schema.Float32FieldType:
		return arrow.PrimitiveTypes.Float32, nil
	case schema.Float64FieldType:
		return arrow.PrimitiveTypes.Float64, nil
	case schema.Int32FieldType:
		return arrow.PrimitiveTypes.Int32, nil
	case schema.Int64FieldType:
		return arrow.PrimitiveTypes.Int64, nil
	case schema.Uint32FieldType:
		return arrow.PrimitiveTypes.Uint32, nil
	case schema.Uint64FieldType:
		return arrow.PrimitiveTypes.Uint64, nil
	case schema.BoolFieldType:
		return arrow.FixedWidthTypes.Boolean, nil
	default:
		return nil, fmt.Errorf("no arrow type for %s", typ.String())
	}
}

// Schema builds the arrow schema of a column layout
func Schema(layout []schema.Column) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(layout))

	for _, col := range layout {
		dt, err := dataType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %s", col.Name, err.Error())
		}
		if col.Repeated {
			dt = arrow.ListOf(dt)
		}
		fields = append(fields, arrow.Field{Name: col.Name, Type: dt, Nullable: false})
	}

	return arrow.NewSchema(fields, nil), nil
}
