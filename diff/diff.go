package diff

import (
	"github.com/ridoystarlord/apdbschema/introspect"
	"github.com/ridoystarlord/apdbschema/schema"
)

type OperationType string

const (
	CreateTable OperationType = "CREATE_TABLE"
	DropTable   OperationType = "DROP_TABLE"
	AddColumn   OperationType = "ADD_COLUMN"
	DropColumn  OperationType = "DROP_COLUMN"
	CreateIndex OperationType = "CREATE_INDEX"
	DropIndex   OperationType = "DROP_INDEX"
)

type Operation struct {
	Type       OperationType
	TableName  string
	Model      *schema.Model  // for CREATE_TABLE
	Column     *schema.Column // for ADD_COLUMN
	ColumnName string         // for DROP_COLUMN
	Index      *schema.Index  // for CREATE_INDEX
	IndexName  string         // for DROP_INDEX
}

// Plan returns the operations that create models from scratch. With drop
// set, every table is dropped first (tolerating absent tables), so running
// the plan twice yields the same tables.
func Plan(models []*schema.Model, drop bool) []Operation {
	var ops []Operation
	if drop {
		for _, m := range models {
			ops = append(ops, Operation{Type: DropTable, TableName: m.TableName})
		}
	}
	for _, m := range models {
		ops = append(ops, Operation{Type: CreateTable, TableName: m.TableName, Model: m})
		for i := range m.Indexes {
			ops = append(ops, Operation{Type: CreateIndex, TableName: m.TableName, Index: &m.Indexes[i]})
		}
	}
	return ops
}

// DiffSchemas compares models with the tables found in a database and
// returns the operations that would bring the database in line. Tables in
// the database that no model describes are left alone.
func DiffSchemas(models []*schema.Model, existing []introspect.ExistingTable) []Operation {
	var ops []Operation

	existingTableMap := map[string]introspect.ExistingTable{}
	for _, t := range existing {
		existingTableMap[t.TableName] = t
	}

	for _, model := range models {
		table, exists := existingTableMap[model.TableName]
		if !exists {
			ops = append(ops, Operation{Type: CreateTable, TableName: model.TableName, Model: model})
			for i := range model.Indexes {
				ops = append(ops, Operation{Type: CreateIndex, TableName: model.TableName, Index: &model.Indexes[i]})
			}
			continue
		}

		existingCols := map[string]bool{}
		for _, c := range table.Columns {
			existingCols[c.ColumnName] = true
		}
		modelCols := map[string]bool{}
		for i, col := range model.Columns {
			modelCols[col.Name] = true
			if !existingCols[col.Name] {
				ops = append(ops, Operation{Type: AddColumn, TableName: model.TableName, Column: &model.Columns[i]})
			}
		}
		for _, col := range table.Columns {
			if !modelCols[col.ColumnName] {
				ops = append(ops, Operation{Type: DropColumn, TableName: model.TableName, ColumnName: col.ColumnName})
			}
		}

		existingIndexes := map[string]bool{}
		for _, idx := range table.Indexes {
			existingIndexes[idx.IndexName] = true
		}
		modelIndexes := map[string]bool{}
		for i, idx := range model.Indexes {
			modelIndexes[idx.Name] = true
			if !existingIndexes[idx.Name] {
				ops = append(ops, Operation{Type: CreateIndex, TableName: model.TableName, Index: &model.Indexes[i]})
			}
		}
		for _, idx := range table.Indexes {
			if idx.Implicit || modelIndexes[idx.IndexName] {
				continue
			}
			ops = append(ops, Operation{Type: DropIndex, TableName: model.TableName, IndexName: idx.IndexName})
		}
	}

	return ops
}
