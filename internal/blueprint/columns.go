package blueprint

import "github.com/tordrt/schemabuilder/internal/schema"

const (
	defaultStringLength  = 255
	defaultCharLength    = 1
	defaultUUIDLength    = 36
	defaultDecimalLength = 17
	defaultScale         = 6
)

// DefaultLength returns the length a column of type t gets when declared
// without one
func DefaultLength(t schema.ColumnType) int {
	switch t {
	case schema.TypeString:
		return defaultStringLength
	case schema.TypeChar:
		return defaultCharLength
	case schema.TypeUUID:
		return defaultUUIDLength
	case schema.TypeDecimal:
		return defaultDecimalLength
	}
	return 0
}

// ColumnDefinition applies modifiers to the column declared last
type ColumnDefinition struct {
	bp *Blueprint
	op int // -1 when the declaration failed
}

func (b *Blueprint) declare(col schema.Column) *ColumnDefinition {
	if err := b.AddColumn(col); err != nil {
		return &ColumnDefinition{bp: b, op: -1}
	}
	return &ColumnDefinition{bp: b, op: len(b.ops) - 1}
}

// Column declares a column of any type with its default length
func (b *Blueprint) Column(name string, t schema.ColumnType) *ColumnDefinition {
	col := schema.Column{Name: name, Type: t, Length: DefaultLength(t)}
	if t == schema.TypeDecimal {
		col.Scale = defaultScale
	}
	return b.declare(col)
}

// Increments adds an auto-incrementing integer primary key
func (b *Blueprint) Increments(name string) *ColumnDefinition {
	return b.declare(schema.Column{Name: name, Type: schema.TypeIncrements, Primary: true, AutoIncrement: true})
}

// BigIncrements adds an auto-incrementing big integer primary key
func (b *Blueprint) BigIncrements(name string) *ColumnDefinition {
	return b.declare(schema.Column{Name: name, Type: schema.TypeBigIncrements, Primary: true, AutoIncrement: true})
}

// String adds a VARCHAR column. Length defaults to 255.
func (b *Blueprint) String(name string, length ...int) *ColumnDefinition {
	return b.sized(name, schema.TypeString, length)
}

// Char adds a CHAR column. Length defaults to 1.
func (b *Blueprint) Char(name string, length ...int) *ColumnDefinition {
	return b.sized(name, schema.TypeChar, length)
}

func (b *Blueprint) sized(name string, t schema.ColumnType, length []int) *ColumnDefinition {
	col := schema.Column{Name: name, Type: t, Length: DefaultLength(t)}
	if len(length) > 0 {
		col.Length = length[0]
	}
	return b.declare(col)
}

// Text adds a TEXT column
func (b *Blueprint) Text(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeText)
}

// LongText adds a LONGTEXT column
func (b *Blueprint) LongText(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeLongText)
}

// Integer adds an INTEGER column
func (b *Blueprint) Integer(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeInteger)
}

// BigInteger adds a BIGINT column
func (b *Blueprint) BigInteger(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeBigInteger)
}

// SmallInteger adds a SMALLINT column
func (b *Blueprint) SmallInteger(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeSmallInteger)
}

// TinyInteger adds a TINYINT column
func (b *Blueprint) TinyInteger(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeTinyInteger)
}

// Boolean adds a BOOLEAN column
func (b *Blueprint) Boolean(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeBoolean)
}

// Double adds a DOUBLE column
func (b *Blueprint) Double(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeDouble)
}

// Float adds a FLOAT column
func (b *Blueprint) Float(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeFloat)
}

// Date adds a DATE column
func (b *Blueprint) Date(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeDate)
}

// DateTime adds a DATETIME column
func (b *Blueprint) DateTime(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeDateTime)
}

// Timestamp adds a TIMESTAMP column
func (b *Blueprint) Timestamp(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeTimestamp)
}

// Time adds a TIME column
func (b *Blueprint) Time(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeTime)
}

// JSON adds a JSON column
func (b *Blueprint) JSON(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeJSON)
}

// Binary adds a binary column
func (b *Blueprint) Binary(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeBinary)
}

// UUID adds a UUID column, stored as CHAR(36) where there is no native type
func (b *Blueprint) UUID(name string) *ColumnDefinition {
	return b.Column(name, schema.TypeUUID)
}

// Decimal adds a DECIMAL column with the given precision and scale
func (b *Blueprint) Decimal(name string, precision, scale int) *ColumnDefinition {
	return b.declare(schema.Column{Name: name, Type: schema.TypeDecimal, Length: precision, Scale: scale})
}

// Enum adds a column restricted to the given values
func (b *Blueprint) Enum(name string, values ...string) *ColumnDefinition {
	return b.declare(schema.Column{Name: name, Type: schema.TypeEnum, Values: append([]string(nil), values...)})
}

// Timestamps adds nullable created_at and updated_at columns defaulting to
// the current time
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Nullable().Default("current")
	b.Timestamp("updated_at").Nullable().Default("current")
}

func (d *ColumnDefinition) update(fn func(col *schema.Column)) *ColumnDefinition {
	if d.op < 0 {
		return d
	}
	var col schema.Column
	switch op := d.bp.ops[d.op].(type) {
	case AddColumn:
		fn(&op.Column)
		d.bp.ops[d.op] = op
		col = op.Column
	case ChangeColumn:
		fn(&op.Column)
		d.bp.ops[d.op] = op
		col = op.Column
	default:
		return d
	}
	for i := range d.bp.table.Columns {
		if d.bp.table.Columns[i].Name == col.Name {
			d.bp.table.Columns[i] = col
		}
	}
	return d
}

// Nullable allows NULL values in the column
func (d *ColumnDefinition) Nullable() *ColumnDefinition {
	return d.update(func(col *schema.Column) { col.Nullable = true })
}

// Default sets the column default. The strings "current", "now" and "null"
// map to CURRENT_TIMESTAMP, NOW() and NULL.
func (d *ColumnDefinition) Default(value any) *ColumnDefinition {
	return d.update(func(col *schema.Column) { col.Default = value })
}

// Unsigned marks an integer column unsigned where the dialect supports it
func (d *ColumnDefinition) Unsigned() *ColumnDefinition {
	return d.update(func(col *schema.Column) { col.Unsigned = true })
}

// Primary marks the column as the primary key
func (d *ColumnDefinition) Primary() *ColumnDefinition {
	return d.update(func(col *schema.Column) { col.Primary = true })
}

// Length overrides the column length
func (d *ColumnDefinition) Length(n int) *ColumnDefinition {
	return d.update(func(col *schema.Column) { col.Length = n })
}

// Unique adds a unique index on the column
func (d *ColumnDefinition) Unique() *ColumnDefinition {
	if name, ok := d.name(); ok {
		d.bp.Unique(name)
	}
	return d
}

// Index adds a plain index on the column
func (d *ColumnDefinition) Index() *ColumnDefinition {
	if name, ok := d.name(); ok {
		d.bp.Index(name)
	}
	return d
}

// Change turns the declaration into a change of an existing column
func (d *ColumnDefinition) Change() *ColumnDefinition {
	if d.op < 0 {
		return d
	}
	if add, ok := d.bp.ops[d.op].(AddColumn); ok {
		d.bp.ops[d.op] = ChangeColumn{Column: add.Column}
	}
	return d
}

func (d *ColumnDefinition) name() (string, bool) {
	if d.op < 0 {
		return "", false
	}
	switch op := d.bp.ops[d.op].(type) {
	case AddColumn:
		return op.Column.Name, true
	case ChangeColumn:
		return op.Column.Name, true
	}
	return "", false
}
