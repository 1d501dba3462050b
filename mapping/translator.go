// Package mapping translates column names between the logical schema and a
// physical representation (database table or record schema).
package mapping

// Translator maps logical column names to physical names per table. Names
// without an entry map to themselves in both directions.
type Translator struct {
	forward map[string]map[string]string
	reverse map[string]map[string]string
}

// NewTranslator builds a translator from table -> (logical -> physical)
// entries. A nil map gives the identity translator.
func NewTranslator(entries map[string]map[string]string) *Translator {
	tr := &Translator{
		forward: make(map[string]map[string]string, len(entries)),
		reverse: make(map[string]map[string]string, len(entries)),
	}
	for table, names := range entries {
		fwd := make(map[string]string, len(names))
		rev := make(map[string]string, len(names))
		for logical, physical := range names {
			fwd[logical] = physical
			rev[physical] = logical
		}
		tr.forward[table] = fwd
		tr.reverse[table] = rev
	}
	return tr
}

// Physical returns the physical name of a logical column.
func (tr *Translator) Physical(table, logical string) string {
	if name, ok := tr.forward[table][logical]; ok {
		return name
	}
	return logical
}

// Logical returns the logical name of a physical column.
func (tr *Translator) Logical(table, physical string) string {
	if name, ok := tr.reverse[table][physical]; ok {
		return name
	}
	return physical
}
