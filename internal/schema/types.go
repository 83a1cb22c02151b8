package schema

import (
	"strconv"
	"strings"
)

// ColumnType is the semantic type of a column, independent of any dialect
type ColumnType string

const (
	TypeIncrements    ColumnType = "increments"
	TypeBigIncrements ColumnType = "big_increments"
	TypeString        ColumnType = "string"
	TypeChar          ColumnType = "char"
	TypeText          ColumnType = "text"
	TypeLongText      ColumnType = "long_text"
	TypeInteger       ColumnType = "integer"
	TypeBigInteger    ColumnType = "big_integer"
	TypeSmallInteger  ColumnType = "small_integer"
	TypeTinyInteger   ColumnType = "tiny_integer"
	TypeBoolean       ColumnType = "boolean"
	TypeDecimal       ColumnType = "decimal"
	TypeDouble        ColumnType = "double"
	TypeFloat         ColumnType = "float"
	TypeDate          ColumnType = "date"
	TypeDateTime      ColumnType = "datetime"
	TypeTimestamp     ColumnType = "timestamp"
	TypeTime          ColumnType = "time"
	TypeJSON          ColumnType = "json"
	TypeBinary        ColumnType = "binary"
	TypeUUID          ColumnType = "uuid"
	TypeEnum          ColumnType = "enum"

	// TypeNative carries a database type the model has no name for; the
	// column's NativeType is rendered verbatim.
	TypeNative ColumnType = "native"
)

var columnTypes = map[ColumnType]bool{
	TypeIncrements: true, TypeBigIncrements: true, TypeString: true, TypeChar: true,
	TypeText: true, TypeLongText: true, TypeInteger: true, TypeBigInteger: true,
	TypeSmallInteger: true, TypeTinyInteger: true, TypeBoolean: true, TypeDecimal: true,
	TypeDouble: true, TypeFloat: true, TypeDate: true, TypeDateTime: true,
	TypeTimestamp: true, TypeTime: true, TypeJSON: true, TypeBinary: true,
	TypeUUID: true, TypeEnum: true, TypeNative: true,
}

// ParseColumnType resolves a semantic type name such as "string" or "big_integer"
func ParseColumnType(name string) (ColumnType, bool) {
	t := ColumnType(strings.ToLower(strings.TrimSpace(name)))
	switch t {
	case "bigint":
		t = TypeBigInteger
	case "int":
		t = TypeInteger
	case "bool":
		t = TypeBoolean
	case "varchar":
		t = TypeString
	}
	return t, columnTypes[t]
}

// Sized reports whether a length annotation is meaningful for the type
func (t ColumnType) Sized() bool {
	switch t {
	case TypeString, TypeChar, TypeDecimal, TypeUUID:
		return true
	}
	return false
}

// nativeTypes maps lower-cased database type names to semantic types
var nativeTypes = map[string]ColumnType{
	"varchar":                     TypeString,
	"character varying":           TypeString,
	"nvarchar":                    TypeString,
	"char":                        TypeChar,
	"character":                   TypeChar,
	"bpchar":                      TypeChar,
	"text":                        TypeText,
	"clob":                        TypeText,
	"mediumtext":                  TypeLongText,
	"longtext":                    TypeLongText,
	"int":                         TypeInteger,
	"integer":                     TypeInteger,
	"int4":                        TypeInteger,
	"mediumint":                   TypeInteger,
	"bigint":                      TypeBigInteger,
	"int8":                        TypeBigInteger,
	"smallint":                    TypeSmallInteger,
	"int2":                        TypeSmallInteger,
	"tinyint":                     TypeTinyInteger,
	"bool":                        TypeBoolean,
	"boolean":                     TypeBoolean,
	"decimal":                     TypeDecimal,
	"numeric":                     TypeDecimal,
	"double":                      TypeDouble,
	"double precision":            TypeDouble,
	"float8":                      TypeDouble,
	"float":                       TypeFloat,
	"float4":                      TypeFloat,
	"real":                        TypeFloat,
	"date":                        TypeDate,
	"datetime":                    TypeDateTime,
	"timestamp":                   TypeTimestamp,
	"timestamptz":                 TypeTimestamp,
	"timestamp without time zone": TypeTimestamp,
	"timestamp with time zone":    TypeTimestamp,
	"time":                        TypeTime,
	"time without time zone":      TypeTime,
	"json":                        TypeJSON,
	"jsonb":                       TypeJSON,
	"blob":                        TypeBinary,
	"longblob":                    TypeBinary,
	"bytea":                       TypeBinary,
	"uuid":                        TypeUUID,
	"enum":                        TypeEnum,
}

// ColumnFromNative builds a column from an introspected database type such as
// "VARCHAR(100)", "int(11) unsigned" or "enum('a','b')". Unknown types are kept
// verbatim as TypeNative.
func ColumnFromNative(name, raw string) Column {
	col := Column{Name: name, Type: TypeNative, NativeType: strings.TrimSpace(raw)}

	base := strings.ToLower(col.NativeType)
	if strings.HasSuffix(base, " unsigned") {
		col.Unsigned = true
		base = strings.TrimSpace(strings.TrimSuffix(base, " unsigned"))
	}

	var args string
	if open := strings.Index(base, "("); open >= 0 {
		if end := strings.LastIndex(base, ")"); end > open {
			args = base[open+1 : end]
			base = strings.TrimSpace(base[:open] + base[end+1:])
		}
	}

	t, ok := nativeTypes[base]
	if !ok {
		col.Unsigned = false
		return col
	}
	col.Type = t
	col.NativeType = ""

	if t == TypeEnum {
		col.Values = parseEnumValues(typeArgs(raw))
		return col
	}
	if args != "" && t.Sized() {
		parts := strings.Split(args, ",")
		col.Length, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
		if len(parts) > 1 {
			col.Scale, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
		}
	}
	return col
}

// typeArgs returns the text between the outer parentheses of raw
func typeArgs(raw string) string {
	open := strings.Index(raw, "(")
	end := strings.LastIndex(raw, ")")
	if open < 0 || end <= open {
		return ""
	}
	return raw[open+1 : end]
}

// parseEnumValues splits a list of quoted values such as 'a','b,c','it''s'.
// Commas inside quotes belong to the value and '' is an escaped quote.
func parseEnumValues(args string) []string {
	var (
		values  []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for i := 0; i < len(args); i++ {
		ch := args[i]
		switch {
		case ch == '\'' && quoted && i+1 < len(args) && args[i+1] == '\'':
			current.WriteByte('\'')
			i++
		case ch == '\'':
			quoted = !quoted
			started = true
		case ch == ',' && !quoted:
			values = append(values, current.String())
			current.Reset()
			started = false
		case quoted:
			current.WriteByte(ch)
		case ch != ' ':
			current.WriteByte(ch)
			started = true
		}
	}
	if started || current.Len() > 0 {
		values = append(values, current.String())
	}
	return values
}
