package schema

// Expression is a default value rendered verbatim, e.g. CURRENT_TIMESTAMP
type Expression string

// Column describes one column of a table
type Column struct {
	Name string
	Type ColumnType
	// NativeType is the verbatim database type for TypeNative columns
	NativeType string
	// Length is the display length or precision; zero means unset
	Length int
	// Scale is the number of decimal places for TypeDecimal
	Scale         int
	Nullable      bool
	Default       any
	Primary       bool
	AutoIncrement bool
	Unsigned      bool
	// Values lists the allowed values of a TypeEnum column
	Values []string
}

// HasDefault reports whether the column declares a default value
func (c Column) HasDefault() bool {
	return c.Default != nil
}

// WithName returns a copy of the column under a different name
func (c Column) WithName(name string) Column {
	c.Name = name
	if c.Values != nil {
		c.Values = append([]string(nil), c.Values...)
	}
	return c
}
