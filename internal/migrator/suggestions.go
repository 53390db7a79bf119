package migrator

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// UpdateSuggestions groups proposed SQL statements by action class. Each
// statement is keyed by the SHA-1 hash of its own literal text, so identical
// statements collapse and callers can acknowledge individual statements by
// hash.
type UpdateSuggestions struct {
	CreateTable        map[string]string `json:"create_table,omitempty"`
	Add                map[string]string `json:"add,omitempty"`
	Change             map[string]string `json:"change,omitempty"`
	ChangeCurrentValue map[string]string `json:"change_currentValue,omitempty"`
	Drop               map[string]string `json:"drop,omitempty"`
	DropTable          map[string]string `json:"drop_table,omitempty"`
	ChangeTable        map[string]string `json:"change_table,omitempty"`
	TablesCount        map[string]int64  `json:"tables_count,omitempty"`
}

// NewUpdateSuggestions creates an empty suggestion set.
func NewUpdateSuggestions() *UpdateSuggestions {
	return &UpdateSuggestions{
		CreateTable:        make(map[string]string),
		Add:                make(map[string]string),
		Change:             make(map[string]string),
		ChangeCurrentValue: make(map[string]string),
		Drop:               make(map[string]string),
		DropTable:          make(map[string]string),
		ChangeTable:        make(map[string]string),
		TablesCount:        make(map[string]int64),
	}
}

// StatementHash returns the content hash used to address a statement.
func StatementHash(statement string) string {
	sum := sha1.Sum([]byte(statement))
	return hex.EncodeToString(sum[:])
}

// RowCounter counts the live rows of a table. Used to annotate destructive
// table suggestions with the amount of data at stake.
type RowCounter interface {
	RowCount(ctx context.Context, tableName string) (int64, error)
}

// Extractor decomposes a schema diff into hash addressed SQL suggestions.
type Extractor struct {
	builder *Builder
	counter RowCounter
}

// NewExtractor creates an extractor. counter may be nil, in which case no
// row counts are reported.
func NewExtractor(builder *Builder, counter RowCounter) *Extractor {
	return &Extractor{builder: builder, counter: counter}
}

// Extract turns a mitigated diff into suggestions. With remove unset it
// emits additive and change statements; with remove set it emits the
// rename-to-staged and drop statements for removals.
func (e *Extractor) Extract(ctx context.Context, diff *SchemaDiff, remove bool) *UpdateSuggestions {
	suggestions := NewUpdateSuggestions()
	if remove {
		e.extractRemovals(ctx, diff, suggestions)
	} else {
		e.extractAdditions(diff, suggestions)
	}
	return suggestions
}

func (e *Extractor) extractAdditions(diff *SchemaDiff, suggestions *UpdateSuggestions) {
	for _, tableName := range sortedKeys(diff.NewTables) {
		statement := e.builder.CreateTableSQL(diff.NewTables[tableName])
		suggestions.CreateTable[StatementHash(statement)] = statement
	}

	for _, tableName := range sortedKeys(diff.ChangedTables) {
		tableDiff := diff.ChangedTables[tableName]
		if tableDiff.NewName != "" {
			continue
		}

		for _, name := range sortedKeys(tableDiff.AddedColumns) {
			statement := e.builder.AddColumnSQL(tableName, tableDiff.AddedColumns[name])
			suggestions.Add[StatementHash(statement)] = statement
		}
		for _, name := range sortedKeys(tableDiff.AddedIndexes) {
			statement := e.builder.AddIndexSQL(tableName, tableDiff.AddedIndexes[name])
			suggestions.Add[StatementHash(statement)] = statement
		}
		for _, name := range sortedKeys(tableDiff.AddedForeignKeys) {
			statement := e.builder.AddForeignKeySQL(tableName, tableDiff.AddedForeignKeys[name])
			suggestions.Add[StatementHash(statement)] = statement
		}

		for _, name := range sortedKeys(tableDiff.ChangedColumns) {
			change := tableDiff.ChangedColumns[name]
			statement := e.builder.ChangeColumnSQL(tableName, change.From, change.To)
			hash := StatementHash(statement)
			suggestions.Change[hash] = statement
			suggestions.ChangeCurrentValue[hash] = e.builder.ColumnDefinitionSQL(change.From)
		}
		for _, name := range sortedKeys(tableDiff.ChangedIndexes) {
			drop := e.builder.DropIndexSQL(tableName, name)
			suggestions.Change[StatementHash(drop)] = drop
			add := e.builder.AddIndexSQL(tableName, tableDiff.ChangedIndexes[name])
			suggestions.Change[StatementHash(add)] = add
		}
		for _, renamed := range tableDiff.RenamedIndexes {
			statement := e.builder.RenameIndexSQL(tableName, renamed.OldName, renamed.Index)
			suggestions.Change[StatementHash(statement)] = statement
		}
		for _, name := range sortedKeys(tableDiff.ChangedForeignKeys) {
			drop := e.builder.DropForeignKeySQL(tableName, name)
			suggestions.Change[StatementHash(drop)] = drop
			add := e.builder.AddForeignKeySQL(tableName, tableDiff.ChangedForeignKeys[name])
			suggestions.Change[StatementHash(add)] = add
		}
		if tableDiff.ChangedOptions != nil {
			if statement := e.builder.TableOptionsSQL(tableName, *tableDiff.ChangedOptions); statement != "" {
				suggestions.Change[StatementHash(statement)] = statement
			}
		}
	}
}

func (e *Extractor) extractRemovals(ctx context.Context, diff *SchemaDiff, suggestions *UpdateSuggestions) {
	for _, tableName := range sortedKeys(diff.ChangedTables) {
		tableDiff := diff.ChangedTables[tableName]

		if tableDiff.NewName != "" {
			statement := e.builder.RenameTableSQL(tableName, tableDiff.NewName)
			hash := StatementHash(statement)
			suggestions.ChangeTable[hash] = statement
			e.recordRowCount(ctx, suggestions, hash, tableName)
		}

		for _, name := range sortedKeys(tableDiff.RenamedColumns) {
			renamed := tableDiff.RenamedColumns[name]
			from := renamed.Clone()
			from.Name = name
			statement := e.builder.RenameColumnSQL(tableName, from, renamed)
			suggestions.Change[StatementHash(statement)] = statement
		}

		for _, name := range sortedKeys(tableDiff.RemovedColumns) {
			if !tableDiff.RemovedColumns[name].IsDeleted() {
				continue
			}
			statement := e.builder.DropColumnSQL(tableName, name)
			suggestions.Drop[StatementHash(statement)] = statement
		}
	}

	for _, tableName := range sortedKeys(diff.RemovedTables) {
		if !diff.RemovedTables[tableName].IsDeleted() {
			continue
		}
		statement := e.builder.DropTableSQL(tableName)
		hash := StatementHash(statement)
		suggestions.DropTable[hash] = statement
		e.recordRowCount(ctx, suggestions, hash, tableName)
	}
}

func (e *Extractor) recordRowCount(ctx context.Context, suggestions *UpdateSuggestions, hash, tableName string) {
	if e.counter == nil {
		return
	}
	count, err := e.counter.RowCount(ctx, tableName)
	if err != nil {
		return
	}
	suggestions.TablesCount[hash] = count
}
