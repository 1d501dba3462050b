package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is wrapped by every error caused by an inconsistent
// configuration: a layout that needs the extra schema file, a projection of
// an unknown role or column, conflicting primary keys and the like.
var ErrConfiguration = errors.New("schema configuration error")

// NamingError is returned when an external record schema declares a field
// that matches a logical column only when case is ignored. Such a schema
// would be silently misread by case-insensitive storage backends.
type NamingError struct {
	Table    string
	Column   string   // logical column name
	Expected string   // external name the column maps to
	Found    []string // external fields matching Expected case-insensitively
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("table %s: column %q maps to external field %q but record schema declares %s",
		e.Table, e.Column, e.Expected, strings.Join(quoteAll(e.Found), ", "))
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
