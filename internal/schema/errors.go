package schema

import "fmt"

// DuplicateColumnError is returned when a column name is defined twice
type DuplicateColumnError struct {
	Table  string
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("column %q is already defined on table %q", e.Column, e.Table)
}

// UnknownColumnError is returned when an operation targets a column the table does not have
type UnknownColumnError struct {
	Table  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q does not exist on table %q", e.Column, e.Table)
}

// MissingSourceTableError is returned when a table must be rebuilt but its
// current shape was never supplied
type MissingSourceTableError struct {
	Table string
}

func (e *MissingSourceTableError) Error() string {
	return fmt.Sprintf("table %q must be rebuilt but no snapshot of its current columns was attached", e.Table)
}

// UnsupportedOperationError is returned when a dialect has no way to express an operation
type UnsupportedOperationError struct {
	Dialect   string
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	msg := fmt.Sprintf("%s: unsupported operation %s", e.Dialect, e.Operation)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
