package migrator

import (
	"sort"

	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

// Differ computes the raw structural diff between a live and an expected
// schema. The result still contains detected renames and plain removals;
// the transformation stages decide what becomes of them.
type Differ struct {
	family platform.Family
}

// NewDiffer creates a differ for the given platform family.
func NewDiffer(family platform.Family) *Differ {
	return &Differ{family: family}
}

// Diff compares the expected schema against the live schema.
func (d *Differ) Diff(connection string, live, expected *schema.Schema) *SchemaDiff {
	diff := NewSchemaDiff(connection, live)

	for _, name := range expected.TableNames() {
		if live.Table(name) == nil {
			diff.NewTables[name] = expected.Table(name).Clone()
		}
	}

	for _, name := range live.TableNames() {
		liveTable := live.Table(name)
		expectedTable := expected.Table(name)
		if expectedTable == nil {
			diff.RemovedTables[name] = liveTable.Clone()
			continue
		}
		tableDiff := d.diffTable(liveTable, expectedTable)
		if !tableDiff.IsEmpty() {
			diff.ChangedTables[name] = tableDiff
		}
	}

	return diff
}

// diffTable compares one table's columns, indexes, foreign keys and options.
func (d *Differ) diffTable(live, expected *schema.Table) *TableDiff {
	diff := NewTableDiff(live, expected)

	d.diffColumns(diff, live, expected)
	d.diffIndexes(diff, live, expected)
	d.diffForeignKeys(diff, live, expected)

	if platform.SupportsTableOptions(d.family) {
		diff.ChangedOptions = diffTableOptions(live.Options, expected.Options)
	}

	return diff
}

// diffTableOptions compares only the option fields the expected declaration
// sets. Introspected tables always carry an engine and a collation, so an
// unset declared field is not a difference.
func diffTableOptions(live, expected schema.TableOptions) *schema.TableOptions {
	changed := expected.Engine != "" && expected.Engine != live.Engine ||
		expected.Charset != "" && expected.Charset != live.Charset ||
		expected.Collation != "" && expected.Collation != live.Collation ||
		expected.RowFormat != "" && expected.RowFormat != live.RowFormat ||
		expected.Comment != "" && expected.Comment != live.Comment
	if !changed {
		return nil
	}
	options := expected
	return &options
}

func (d *Differ) diffColumns(diff *TableDiff, live, expected *schema.Table) {
	for _, column := range expected.Columns {
		if live.Column(column.Name) == nil {
			diff.AddedColumns[column.Name] = column.Clone()
		}
	}

	for _, column := range live.Columns {
		expectedColumn := expected.Column(column.Name)
		if expectedColumn == nil {
			diff.RemovedColumns[column.Name] = column.Clone()
			continue
		}
		if !column.Equal(expectedColumn) {
			diff.ChangedColumns[column.Name] = &ColumnDiff{
				From: column.Clone(),
				To:   expectedColumn.Clone(),
			}
		}
	}

	// A removed column whose shape reappears under a new name is recorded
	// as a rename. The un-rename stage reverses this for columns.
	for _, removedName := range sortedKeys(diff.RemovedColumns) {
		removed := diff.RemovedColumns[removedName]
		for _, addedName := range sortedKeys(diff.AddedColumns) {
			if removed.SameDefinition(diff.AddedColumns[addedName]) {
				diff.RenamedColumns[removedName] = diff.AddedColumns[addedName].Clone()
				delete(diff.RemovedColumns, removedName)
				delete(diff.AddedColumns, addedName)
				break
			}
		}
	}
}

func (d *Differ) diffIndexes(diff *TableDiff, live, expected *schema.Table) {
	for _, index := range expected.Indexes {
		if live.Index(index.Name) == nil {
			diff.AddedIndexes[index.Name] = index.Clone()
		}
	}

	for _, index := range live.Indexes {
		expectedIndex := expected.Index(index.Name)
		if expectedIndex == nil {
			diff.RemovedIndexes[index.Name] = index.Clone()
			continue
		}
		if !index.Equal(expectedIndex) {
			diff.ChangedIndexes[index.Name] = expectedIndex.Clone()
		}
	}

	for _, removedName := range sortedKeys(diff.RemovedIndexes) {
		removed := diff.RemovedIndexes[removedName]
		for _, addedName := range sortedKeys(diff.AddedIndexes) {
			if removed.SameDefinition(diff.AddedIndexes[addedName]) {
				diff.RenamedIndexes = append(diff.RenamedIndexes, &RenamedIndex{
					OldName: removedName,
					Index:   diff.AddedIndexes[addedName].Clone(),
				})
				delete(diff.RemovedIndexes, removedName)
				delete(diff.AddedIndexes, addedName)
				break
			}
		}
	}
}

// sortedKeys returns the map's keys in lexical order so diff output is
// stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (d *Differ) diffForeignKeys(diff *TableDiff, live, expected *schema.Table) {
	for _, fk := range expected.ForeignKeys {
		if live.ForeignKey(fk.Name) == nil {
			diff.AddedForeignKeys[fk.Name] = fk.Clone()
		}
	}

	for _, fk := range live.ForeignKeys {
		expectedFK := expected.ForeignKey(fk.Name)
		if expectedFK == nil {
			diff.RemovedForeignKeys[fk.Name] = fk.Clone()
			continue
		}
		if !fk.Equal(expectedFK) {
			diff.ChangedForeignKeys[fk.Name] = expectedFK.Clone()
		}
	}
}
