package schema

// IndexKind distinguishes plain, unique, primary and fulltext indexes
type IndexKind string

const (
	IndexPlain    IndexKind = "index"
	IndexUnique   IndexKind = "unique"
	IndexPrimary  IndexKind = "primary"
	IndexFulltext IndexKind = "fulltext"
)

// Index represents a database index
type Index struct {
	Name    string
	Kind    IndexKind
	Columns []string
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Name             string
	Column           string
	ReferencesTable  string
	ReferencesColumn string
	OnDelete         string
	OnUpdate         string
}

// Table is an ordered collection of columns plus indexes and foreign keys.
// Column order is DDL column order.
type Table struct {
	Name        string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
}

// NewTable creates an empty table model
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column, failing if the name is already present
func (t *Table) AddColumn(col Column) error {
	if t.HasColumn(col.Name) {
		return &DuplicateColumnError{Table: t.Name, Column: col.Name}
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// RemoveColumn deletes a column by name, failing if it is absent
func (t *Table) RemoveColumn(name string) error {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return nil
		}
	}
	return &UnknownColumnError{Table: t.Name, Column: name}
}

// FindColumn returns the column with the given name
func (t *Table) FindColumn(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn checks if a table has a column by name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.FindColumn(name)
	return ok
}

// ColumnNames returns the column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the names of the primary key columns
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.Primary {
			pk = append(pk, c.Name)
		}
	}
	return pk
}
