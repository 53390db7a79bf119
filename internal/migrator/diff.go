package migrator

import (
	"nexus-migrator/internal/schema"
)

// ColumnDiff pairs the live and the expected definition of a changed column.
type ColumnDiff struct {
	From *schema.Column `json:"from"`
	To   *schema.Column `json:"to"`
}

// RenamedIndex records an index whose definition survived under a new name.
type RenamedIndex struct {
	OldName string        `json:"oldName"`
	Index   *schema.Index `json:"index"`
}

// TableDiff describes every change of one table. NewName is only set when
// the table itself is staged for removal via the deletion prefix.
type TableDiff struct {
	Name    string `json:"name"`
	NewName string `json:"newName,omitempty"`

	FromTable *schema.Table `json:"-"`
	ToTable   *schema.Table `json:"-"`

	AddedColumns   map[string]*schema.Column `json:"addedColumns,omitempty"`
	ChangedColumns map[string]*ColumnDiff    `json:"changedColumns,omitempty"`
	RemovedColumns map[string]*schema.Column `json:"removedColumns,omitempty"`
	// RenamedColumns maps the live column name to its replacement definition.
	RenamedColumns map[string]*schema.Column `json:"renamedColumns,omitempty"`

	AddedIndexes   map[string]*schema.Index `json:"addedIndexes,omitempty"`
	ChangedIndexes map[string]*schema.Index `json:"changedIndexes,omitempty"`
	RemovedIndexes map[string]*schema.Index `json:"removedIndexes,omitempty"`
	RenamedIndexes []*RenamedIndex          `json:"renamedIndexes,omitempty"`

	AddedForeignKeys   map[string]*schema.ForeignKey `json:"addedForeignKeys,omitempty"`
	ChangedForeignKeys map[string]*schema.ForeignKey `json:"changedForeignKeys,omitempty"`
	RemovedForeignKeys map[string]*schema.ForeignKey `json:"removedForeignKeys,omitempty"`

	ChangedOptions *schema.TableOptions `json:"changedOptions,omitempty"`
}

// NewTableDiff creates an empty diff between the two given table states.
func NewTableDiff(from, to *schema.Table) *TableDiff {
	name := ""
	if from != nil {
		name = from.Name
	} else if to != nil {
		name = to.Name
	}
	return &TableDiff{
		Name:               name,
		FromTable:          from,
		ToTable:            to,
		AddedColumns:       make(map[string]*schema.Column),
		ChangedColumns:     make(map[string]*ColumnDiff),
		RemovedColumns:     make(map[string]*schema.Column),
		RenamedColumns:     make(map[string]*schema.Column),
		AddedIndexes:       make(map[string]*schema.Index),
		ChangedIndexes:     make(map[string]*schema.Index),
		RemovedIndexes:     make(map[string]*schema.Index),
		AddedForeignKeys:   make(map[string]*schema.ForeignKey),
		ChangedForeignKeys: make(map[string]*schema.ForeignKey),
		RemovedForeignKeys: make(map[string]*schema.ForeignKey),
	}
}

// IsEmpty reports whether the table diff carries no change at all.
func (d *TableDiff) IsEmpty() bool {
	return d.NewName == "" &&
		len(d.AddedColumns) == 0 &&
		len(d.ChangedColumns) == 0 &&
		len(d.RemovedColumns) == 0 &&
		len(d.RenamedColumns) == 0 &&
		len(d.AddedIndexes) == 0 &&
		len(d.ChangedIndexes) == 0 &&
		len(d.RemovedIndexes) == 0 &&
		len(d.RenamedIndexes) == 0 &&
		len(d.AddedForeignKeys) == 0 &&
		len(d.ChangedForeignKeys) == 0 &&
		len(d.RemovedForeignKeys) == 0 &&
		d.ChangedOptions == nil
}

// Clone returns a deep copy so transformation stages never mutate their
// input.
func (d *TableDiff) Clone() *TableDiff {
	clone := NewTableDiff(d.FromTable, d.ToTable)
	clone.Name = d.Name
	clone.NewName = d.NewName

	for name, column := range d.AddedColumns {
		clone.AddedColumns[name] = column.Clone()
	}
	for name, change := range d.ChangedColumns {
		clone.ChangedColumns[name] = &ColumnDiff{From: change.From.Clone(), To: change.To.Clone()}
	}
	for name, column := range d.RemovedColumns {
		clone.RemovedColumns[name] = column.Clone()
	}
	for name, column := range d.RenamedColumns {
		clone.RenamedColumns[name] = column.Clone()
	}
	for name, index := range d.AddedIndexes {
		clone.AddedIndexes[name] = index.Clone()
	}
	for name, index := range d.ChangedIndexes {
		clone.ChangedIndexes[name] = index.Clone()
	}
	for name, index := range d.RemovedIndexes {
		clone.RemovedIndexes[name] = index.Clone()
	}
	for _, renamed := range d.RenamedIndexes {
		clone.RenamedIndexes = append(clone.RenamedIndexes, &RenamedIndex{
			OldName: renamed.OldName,
			Index:   renamed.Index.Clone(),
		})
	}
	for name, fk := range d.AddedForeignKeys {
		clone.AddedForeignKeys[name] = fk.Clone()
	}
	for name, fk := range d.ChangedForeignKeys {
		clone.ChangedForeignKeys[name] = fk.Clone()
	}
	for name, fk := range d.RemovedForeignKeys {
		clone.RemovedForeignKeys[name] = fk.Clone()
	}
	if d.ChangedOptions != nil {
		options := *d.ChangedOptions
		clone.ChangedOptions = &options
	}
	return clone
}

// SchemaDiff is the result of comparing the expected schema against the live
// schema of one connection. FromSchema is the live schema the diff was
// computed against.
type SchemaDiff struct {
	Connection string `json:"connection"`

	FromSchema *schema.Schema `json:"-"`

	NewTables     map[string]*schema.Table `json:"newTables,omitempty"`
	RemovedTables map[string]*schema.Table `json:"removedTables,omitempty"`
	ChangedTables map[string]*TableDiff    `json:"changedTables,omitempty"`
}

// NewSchemaDiff creates an empty diff for the given connection and live
// schema.
func NewSchemaDiff(connection string, from *schema.Schema) *SchemaDiff {
	return &SchemaDiff{
		Connection:    connection,
		FromSchema:    from,
		NewTables:     make(map[string]*schema.Table),
		RemovedTables: make(map[string]*schema.Table),
		ChangedTables: make(map[string]*TableDiff),
	}
}

// IsEmpty reports whether the diff proposes no change.
func (d *SchemaDiff) IsEmpty() bool {
	return len(d.NewTables) == 0 && len(d.RemovedTables) == 0 && len(d.ChangedTables) == 0
}

// Clone returns a deep copy of the diff.
func (d *SchemaDiff) Clone() *SchemaDiff {
	clone := NewSchemaDiff(d.Connection, d.FromSchema)
	for name, table := range d.NewTables {
		clone.NewTables[name] = table.Clone()
	}
	for name, table := range d.RemovedTables {
		clone.RemovedTables[name] = table.Clone()
	}
	for name, tableDiff := range d.ChangedTables {
		clone.ChangedTables[name] = tableDiff.Clone()
	}
	return clone
}
