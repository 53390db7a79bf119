package migrator

import (
	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

// The functions in this file are the transformation stages applied to a raw
// diff. Each stage takes a diff and returns a new one; the input is never
// mutated.

// Router resolves which connection owns a table. The connection registry
// satisfies this.
type Router interface {
	ConnectionFor(tableName string) string
	DefaultName() string
	HasMapping() bool
}

// UnrenameColumns reverses every detected column rename into an explicit
// add of the new column plus a removal of the old one. Declarations are
// shipped piecemeal, so two columns of identical shape are usually two
// independent fields, not a rename; renaming would silently relocate data.
func UnrenameColumns(diff *SchemaDiff) *SchemaDiff {
	result := diff.Clone()

	for _, tableDiff := range result.ChangedTables {
		for oldName, renamed := range tableDiff.RenamedColumns {
			tableDiff.AddedColumns[renamed.Name] = renamed

			old := renamed.Clone()
			old.Name = oldName
			tableDiff.RemovedColumns[oldName] = old

			delete(tableDiff.RenamedColumns, oldName)
		}
	}

	return result
}

// StageTableRemovals converts every removed table into a rename to its
// deletion-prefixed name. A table already carrying the prefix stays in the
// removed set and becomes a real drop candidate on the remove pass.
func StageTableRemovals(family platform.Family, diff *SchemaDiff) *SchemaDiff {
	result := diff.Clone()

	for name, table := range result.RemovedTables {
		if table.IsDeleted() {
			continue
		}

		tableDiff := NewTableDiff(table, nil)
		tableDiff.NewName = platform.TruncateIdentifier(
			schema.DeletedPrefix+name, platform.MaxTableNameLength(family))
		result.ChangedTables[name] = tableDiff
		delete(result.RemovedTables, name)
	}

	return result
}

// StageColumnRemovals converts every removed column of a changed table into
// a rename to its deletion-prefixed name, skipping columns that already
// carry the prefix.
func StageColumnRemovals(family platform.Family, diff *SchemaDiff) *SchemaDiff {
	result := diff.Clone()

	for _, tableDiff := range result.ChangedTables {
		for name, column := range tableDiff.RemovedColumns {
			if column.IsDeleted() {
				continue
			}

			renamed := column.Clone()
			renamed.Name = platform.TruncateIdentifier(
				schema.DeletedPrefix+name, platform.MaxColumnNameLength(family))
			tableDiff.RenamedColumns[name] = renamed
			delete(tableDiff.RemovedColumns, name)
		}
	}

	return result
}

// FilterForConnection scopes a diff to the tables the given connection is
// responsible for. The default connection owns everything unmapped; a
// non-default connection without any mapping configuration owns nothing.
// Deletion-prefixed names are resolved to their original name first so
// staged tables stay visible to their connection.
func FilterForConnection(diff *SchemaDiff, router Router, connectionName string) *SchemaDiff {
	if connectionName == router.DefaultName() {
		return diff.Clone()
	}

	result := NewSchemaDiff(diff.Connection, diff.FromSchema)
	if !router.HasMapping() {
		return result
	}

	owned := func(tableName string) bool {
		return router.ConnectionFor(schema.StripDeletedPrefix(tableName)) == connectionName
	}

	for name, table := range diff.NewTables {
		if owned(name) {
			result.NewTables[name] = table.Clone()
		}
	}
	for name, table := range diff.RemovedTables {
		if owned(name) {
			result.RemovedTables[name] = table.Clone()
		}
	}
	for name, tableDiff := range diff.ChangedTables {
		if owned(name) {
			result.ChangedTables[name] = tableDiff.Clone()
		}
	}

	return result
}
