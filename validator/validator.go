package validator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/apdbschema/schema"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Index    string `json:"index,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// Err folds the errors of the result into one error, nil when valid.
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return fmt.Errorf("%w: %s", schema.ErrConfiguration, strings.Join(msgs, "; "))
}

// maxIdentifierLen is the PostgreSQL identifier limit.
const maxIdentifierLen = 63

// ValidateModels checks physical tables before they are created: identifier
// rules, duplicate columns and that every key and index refers to an
// existing column.
func ValidateModels(models []*schema.Model) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}
	for _, m := range models {
		validateModel(m, result)
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func validateModel(m *schema.Model, result *ValidationResult) {
	if err := validateIdentifier("table", m.TableName); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "table_name",
			Table:    m.TableName,
			Message:  err.Error(),
			Severity: "error",
		})
	}

	if len(m.Columns) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "no_columns",
			Table:    m.TableName,
			Message:  fmt.Sprintf("table '%s' must have at least one column", m.TableName),
			Severity: "error",
		})
		return
	}

	columnNames := make(map[string]bool, len(m.Columns))
	for _, c := range m.Columns {
		if columnNames[c.Name] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_column",
				Table:    m.TableName,
				Column:   c.Name,
				Message:  fmt.Sprintf("duplicate column name '%s' in table '%s'", c.Name, m.TableName),
				Severity: "error",
			})
			continue
		}
		columnNames[c.Name] = true

		if err := validateIdentifier("column", c.Name); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "column_name",
				Table:    m.TableName,
				Column:   c.Name,
				Message:  err.Error(),
				Severity: "error",
			})
		}
	}

	if m.PrimaryKey == nil {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "no_primary_key",
			Table:    m.TableName,
			Message:  fmt.Sprintf("table '%s' has no primary key defined", m.TableName),
			Severity: "warning",
		})
	} else {
		checkColumns(m, "primary_key", m.PrimaryKey.Name, m.PrimaryKey.Columns, columnNames, result)
	}
	for _, u := range m.Uniques {
		checkColumns(m, "unique", u.Name, u.Columns, columnNames, result)
	}
	for _, idx := range m.Indexes {
		if err := validateIdentifier("index", idx.Name); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "index_name",
				Table:    m.TableName,
				Index:    idx.Name,
				Message:  err.Error(),
				Severity: "error",
			})
		}
		checkColumns(m, "index", idx.Name, idx.Columns, columnNames, result)
	}
}

func checkColumns(m *schema.Model, kind, name string, cols []string, columnNames map[string]bool, result *ValidationResult) {
	for _, c := range cols {
		if !columnNames[c] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     kind,
				Table:    m.TableName,
				Column:   c,
				Index:    name,
				Message:  fmt.Sprintf("%s '%s' of table '%s' references unknown column '%s'", kind, name, m.TableName, c),
				Severity: "error",
			})
		}
	}
}

// validateIdentifier applies PostgreSQL identifier rules.
func validateIdentifier(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", what)
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("%s name '%s' is too long (max %d characters)", what, name, maxIdentifierLen)
	}
	for i, char := range name {
		letter := (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || char == '_'
		if i == 0 && !letter {
			return fmt.Errorf("%s name '%s' must start with a letter or underscore", what, name)
		}
		if !letter && !(char >= '0' && char <= '9') {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", what, name, char)
		}
	}
	return nil
}
