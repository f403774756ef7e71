package schema

// Column describes one named field of a sequential table
type Column struct {
	Name string
	Type FieldType

	// a variable-length collection per row
	Repeated bool
}

func Scalar(name string, typ FieldType) Column {
	return Column{Name: name, Type: typ}
}

func Repeated(name string, typ FieldType) Column {
	return Column{Name: name, Type: typ, Repeated: true}
}

func (c Column) String() string {
	if c.Repeated {
		return c.Name + ":[]" + c.Type.String()
	}
	return c.Name + ":" + c.Type.String()
}
