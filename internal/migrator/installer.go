package migrator

import (
	"context"
	"database/sql"

	"nexus-migrator/internal/schema"
)

// Executor runs a DDL statement. *sql.DB satisfies this.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Installer applies the additive subset of a diff directly. It never emits
// drops or renames of existing objects; detected renames have already been
// reversed into adds by the un-rename stage.
type Installer struct {
	builder *Builder
	db      Executor
}

// NewInstaller creates an installer rendering SQL with the given builder and
// executing it on db.
func NewInstaller(builder *Builder, db Executor) *Installer {
	return &Installer{builder: builder, db: db}
}

// Plan renders the ordered statement list for an install run. With createOnly
// set only table creation and new column/index/foreign key additions are
// planned; otherwise column changes, index renames and option changes are
// included as well. Removals are always stripped.
func (i *Installer) Plan(diff *SchemaDiff, createOnly bool) []string {
	var statements []string

	for _, tableName := range sortedKeys(diff.NewTables) {
		statements = append(statements, i.builder.CreateTableSQL(diff.NewTables[tableName]))
	}

	for _, tableName := range sortedKeys(diff.ChangedTables) {
		tableDiff := diff.ChangedTables[tableName]
		if tableDiff.NewName != "" {
			continue
		}

		for _, name := range sortedKeys(tableDiff.AddedColumns) {
			statements = append(statements, i.builder.AddColumnSQL(tableName, tableDiff.AddedColumns[name]))
		}
		for _, name := range sortedKeys(tableDiff.AddedIndexes) {
			statements = append(statements, i.builder.AddIndexSQL(tableName, tableDiff.AddedIndexes[name]))
		}
		for _, name := range sortedKeys(tableDiff.AddedForeignKeys) {
			statements = append(statements, i.builder.AddForeignKeySQL(tableName, tableDiff.AddedForeignKeys[name]))
		}

		if createOnly {
			continue
		}

		for _, name := range sortedKeys(tableDiff.ChangedColumns) {
			change := tableDiff.ChangedColumns[name]
			statements = append(statements, i.builder.ChangeColumnSQL(tableName, change.From, change.To))
		}
		for _, name := range sortedKeys(tableDiff.ChangedIndexes) {
			statements = append(statements,
				i.builder.DropIndexSQL(tableName, name),
				i.builder.AddIndexSQL(tableName, tableDiff.ChangedIndexes[name]))
		}
		for _, renamed := range tableDiff.RenamedIndexes {
			statements = append(statements, i.builder.RenameIndexSQL(tableName, renamed.OldName, renamed.Index))
		}
		for _, name := range sortedKeys(tableDiff.ChangedForeignKeys) {
			statements = append(statements,
				i.builder.DropForeignKeySQL(tableName, name),
				i.builder.AddForeignKeySQL(tableName, tableDiff.ChangedForeignKeys[name]))
		}
		if tableDiff.ChangedOptions != nil {
			if statement := i.builder.TableOptionsSQL(tableName, *tableDiff.ChangedOptions); statement != "" {
				statements = append(statements, statement)
			}
		}
	}

	return statements
}

// Apply executes the statements in order. A failing statement is recorded
// with its driver error message and execution continues; successful
// statements map to an empty string.
func (i *Installer) Apply(ctx context.Context, statements []string) map[string]string {
	results := make(map[string]string, len(statements))
	for _, statement := range statements {
		if _, err := i.db.ExecContext(ctx, statement); err != nil {
			results[statement] = err.Error()
		} else {
			results[statement] = ""
		}
	}
	return results
}

// StripRemovals drops every removal action from a diff so the installer path
// can never destroy data. Column renames are expected to have been converted
// to adds by UnrenameColumns before this runs.
func StripRemovals(diff *SchemaDiff) *SchemaDiff {
	result := diff.Clone()
	result.RemovedTables = make(map[string]*schema.Table)

	for name, tableDiff := range result.ChangedTables {
		if tableDiff.NewName != "" {
			delete(result.ChangedTables, name)
			continue
		}
		tableDiff.RemovedColumns = make(map[string]*schema.Column)
		tableDiff.RemovedIndexes = make(map[string]*schema.Index)
		tableDiff.RemovedForeignKeys = make(map[string]*schema.ForeignKey)
		if tableDiff.IsEmpty() {
			delete(result.ChangedTables, name)
		}
	}

	return result
}
