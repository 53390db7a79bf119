package schema

import "strings"

// DeletedPrefix marks a table or column that has been staged for removal.
// A prefixed object survives one more migration pass before it becomes an
// actual drop candidate.
const DeletedPrefix = "zzz_deleted_"

// Column describes a single table column.
type Column struct {
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Length        int    `json:"length,omitempty" yaml:"length,omitempty"`
	Scale         int    `json:"scale,omitempty" yaml:"scale,omitempty"`
	Unsigned      bool   `json:"unsigned,omitempty" yaml:"unsigned,omitempty"`
	NotNull       bool   `json:"notNull,omitempty" yaml:"not_null,omitempty"`
	AutoIncrement bool   `json:"autoIncrement,omitempty" yaml:"auto_increment,omitempty"`
	HasDefault    bool   `json:"hasDefault,omitempty" yaml:"has_default,omitempty"`
	Default       string `json:"default,omitempty" yaml:"default,omitempty"`
	Comment       string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// SameDefinition reports whether two columns are identical in shape, name
// excluded. Used for rename detection.
func (c *Column) SameDefinition(other *Column) bool {
	if c == nil || other == nil {
		return false
	}
	return c.Type == other.Type &&
		c.Length == other.Length &&
		c.Scale == other.Scale &&
		c.Unsigned == other.Unsigned &&
		c.NotNull == other.NotNull &&
		c.AutoIncrement == other.AutoIncrement &&
		c.HasDefault == other.HasDefault &&
		c.Default == other.Default
}

// Equal reports whether two columns are identical including the name.
func (c *Column) Equal(other *Column) bool {
	return c != nil && other != nil && c.Name == other.Name && c.SameDefinition(other)
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := *c
	return &cp
}

// IsDeleted reports whether the column carries the deletion prefix.
func (c *Column) IsDeleted() bool {
	return strings.HasPrefix(c.Name, DeletedPrefix)
}

// IndexColumn references a column inside an index definition. Length carries
// the substring-index length for platforms that support prefix indexing; zero
// means the full column is indexed.
type IndexColumn struct {
	Name   string `json:"name" yaml:"name"`
	Length int    `json:"length,omitempty" yaml:"length,omitempty"`
}

// Index describes a table index.
type Index struct {
	Name    string        `json:"name" yaml:"name"`
	Columns []IndexColumn `json:"columns" yaml:"columns"`
	Unique  bool          `json:"unique,omitempty" yaml:"unique,omitempty"`
	Primary bool          `json:"primary,omitempty" yaml:"primary,omitempty"`
	// Flag holds a platform index modifier such as FULLTEXT or SPATIAL.
	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// SameDefinition reports whether two indexes are identical in shape, name
// excluded.
func (i *Index) SameDefinition(other *Index) bool {
	if i == nil || other == nil {
		return false
	}
	if i.Unique != other.Unique || i.Primary != other.Primary || i.Flag != other.Flag {
		return false
	}
	if len(i.Columns) != len(other.Columns) {
		return false
	}
	for n, col := range i.Columns {
		if col != other.Columns[n] {
			return false
		}
	}
	return true
}

// Equal reports whether two indexes are identical including the name.
func (i *Index) Equal(other *Index) bool {
	return i != nil && other != nil && i.Name == other.Name && i.SameDefinition(other)
}

// Clone returns a deep copy of the index.
func (i *Index) Clone() *Index {
	cp := *i
	cp.Columns = make([]IndexColumn, len(i.Columns))
	copy(cp.Columns, i.Columns)
	return &cp
}

// ColumnNames returns the plain column names, substring lengths stripped.
func (i *Index) ColumnNames() []string {
	names := make([]string, len(i.Columns))
	for n, col := range i.Columns {
		names[n] = col.Name
	}
	return names
}

// ForeignKey describes a referential constraint.
type ForeignKey struct {
	Name              string   `json:"name" yaml:"name"`
	Columns           []string `json:"columns" yaml:"columns"`
	ReferencedTable   string   `json:"referencedTable" yaml:"referenced_table"`
	ReferencedColumns []string `json:"referencedColumns" yaml:"referenced_columns"`
	OnDelete          string   `json:"onDelete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate          string   `json:"onUpdate,omitempty" yaml:"on_update,omitempty"`
}

// Equal reports whether two foreign keys are identical including the name.
func (fk *ForeignKey) Equal(other *ForeignKey) bool {
	if fk == nil || other == nil {
		return false
	}
	if fk.Name != other.Name || fk.ReferencedTable != other.ReferencedTable ||
		fk.OnDelete != other.OnDelete || fk.OnUpdate != other.OnUpdate {
		return false
	}
	if len(fk.Columns) != len(other.Columns) || len(fk.ReferencedColumns) != len(other.ReferencedColumns) {
		return false
	}
	for n, c := range fk.Columns {
		if c != other.Columns[n] {
			return false
		}
	}
	for n, c := range fk.ReferencedColumns {
		if c != other.ReferencedColumns[n] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the foreign key.
func (fk *ForeignKey) Clone() *ForeignKey {
	cp := *fk
	cp.Columns = append([]string(nil), fk.Columns...)
	cp.ReferencedColumns = append([]string(nil), fk.ReferencedColumns...)
	return &cp
}

// TableOptions carries platform table options. Only MySQL-family platforms
// populate these from live introspection.
type TableOptions struct {
	Engine    string `json:"engine,omitempty" yaml:"engine,omitempty"`
	Charset   string `json:"charset,omitempty" yaml:"charset,omitempty"`
	Collation string `json:"collation,omitempty" yaml:"collation,omitempty"`
	RowFormat string `json:"rowFormat,omitempty" yaml:"row_format,omitempty"`
	Comment   string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Table is one table shape: ordered columns, indexes, foreign keys and
// platform options. Identity is the name within a connection's schema.
type Table struct {
	Name        string        `json:"name" yaml:"name"`
	Columns     []*Column     `json:"columns" yaml:"columns"`
	Indexes     []*Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreignKeys,omitempty" yaml:"foreign_keys,omitempty"`
	Options     TableOptions  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Index returns the named index, or nil.
func (t *Table) Index(name string) *Index {
	for _, i := range t.Indexes {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// ForeignKey returns the named foreign key, or nil.
func (t *Table) ForeignKey(name string) *ForeignKey {
	for _, fk := range t.ForeignKeys {
		if fk.Name == name {
			return fk
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cp := &Table{Name: t.Name, Options: t.Options}
	for _, c := range t.Columns {
		cp.Columns = append(cp.Columns, c.Clone())
	}
	for _, i := range t.Indexes {
		cp.Indexes = append(cp.Indexes, i.Clone())
	}
	for _, fk := range t.ForeignKeys {
		cp.ForeignKeys = append(cp.ForeignKeys, fk.Clone())
	}
	return cp
}

// IsDeleted reports whether the table carries the deletion prefix.
func (t *Table) IsDeleted() bool {
	return strings.HasPrefix(t.Name, DeletedPrefix)
}

// StripDeletedPrefix returns the name with the deletion prefix removed, if
// present.
func StripDeletedPrefix(name string) string {
	return strings.TrimPrefix(name, DeletedPrefix)
}

// Schema is the complete table set for one connection.
type Schema struct {
	Name   string            `json:"name,omitempty"`
	Tables map[string]*Table `json:"tables"`
}

// NewSchema creates an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{Name: name, Tables: make(map[string]*Table)}
}

// Table returns the named table, or nil.
func (s *Schema) Table(name string) *Table {
	if s == nil {
		return nil
	}
	return s.Tables[name]
}

// AddTable registers a table, replacing any previous table of the same name.
func (s *Schema) AddTable(t *Table) {
	s.Tables[t.Name] = t
}

// TableNames returns the table names in unspecified order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	return names
}
