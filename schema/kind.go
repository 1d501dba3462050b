package schema

import (
	"fmt"
	"strings"
)

// Kind is the value kind of a logical column.
type Kind string

const (
	KindInt      Kind = "INT"
	KindBigInt   Kind = "BIGINT"
	KindFloat    Kind = "FLOAT"
	KindDouble   Kind = "DOUBLE"
	KindDateTime Kind = "DATETIME"
	KindChar     Kind = "CHAR"
	KindBool     Kind = "BOOL"
	KindBlob     Kind = "BLOB"
)

var kinds = []Kind{KindInt, KindBigInt, KindFloat, KindDouble, KindDateTime, KindChar, KindBool, KindBlob}

// ParseKind converts a type name from a schema file into a Kind.
// Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

// HasImplicitDefault reports whether columns of this kind get a zero default
// when the schema file does not declare one.
func (k Kind) HasImplicitDefault() bool {
	return k != KindBlob && k != KindDateTime
}
