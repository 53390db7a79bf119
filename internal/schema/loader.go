package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"
)

// Loader reads declarative table definitions contributed by deployment
// packages. Each package ships plain CREATE TABLE statements (or the YAML
// equivalent, see yaml.go); the loader turns them into Table values without
// touching any database. Declarations are partial by design: several packages
// may declare pieces of the same table and the merger folds them together.
type Loader struct {
	parser *sqlparser.Parser
}

// NewLoader creates a declaration loader.
func NewLoader() (*Loader, error) {
	parser, err := sqlparser.New(sqlparser.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sql parser: %w", err)
	}
	return &Loader{parser: parser}, nil
}

// LoadPaths reads every .sql and .yaml/.yml file under the given paths, in
// lexical order per directory, and returns the declared tables in declaration
// order. Declaration order matters: the merger applies last-write-wins.
func (l *Loader) LoadPaths(paths []string) ([]*Table, error) {
	var tables []*Table

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("schema path %s: %w", path, err)
		}

		files := []string{path}
		if info.IsDir() {
			files, err = declarationFiles(path)
			if err != nil {
				return nil, err
			}
		}

		for _, file := range files {
			declared, err := l.LoadFile(file)
			if err != nil {
				return nil, err
			}
			tables = append(tables, declared...)
		}
	}

	return tables, nil
}

// LoadFile parses a single declaration file.
func (l *Loader) LoadFile(path string) ([]*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(raw)
	default:
		return l.ParseSQL(string(raw))
	}
}

// ParseSQL parses a blob of CREATE TABLE statements into table declarations.
// Statements other than CREATE TABLE are rejected: a declaration file that
// ships arbitrary DML indicates a broken package and must be fixed at the
// source.
func (l *Loader) ParseSQL(blob string) ([]*Table, error) {
	pieces, err := l.parser.SplitStatementToPieces(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to split schema definition: %w", err)
	}

	var tables []*Table
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		stmt, err := l.parser.Parse(piece)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema definition: %w", err)
		}

		create, ok := stmt.(*sqlparser.CreateTable)
		if !ok {
			return nil, fmt.Errorf("unexpected statement in schema definition: %s", sqlparser.String(stmt))
		}
		if create.TableSpec == nil {
			return nil, fmt.Errorf("table %s declared without a column list", create.Table.Name.String())
		}

		tables = append(tables, tableFromCreate(create))
	}

	return tables, nil
}

func tableFromCreate(create *sqlparser.CreateTable) *Table {
	table := &Table{Name: create.Table.Name.String()}

	for _, def := range create.TableSpec.Columns {
		table.Columns = append(table.Columns, columnFromDefinition(def))

		// Inline PRIMARY KEY / UNIQUE become synthesized indexes so that
		// declaration style does not change the resulting table shape.
		if def.Type.Options == nil {
			continue
		}
		switch def.Type.Options.KeyOpt {
		case sqlparser.ColKeyPrimary:
			table.Indexes = append(table.Indexes, &Index{
				Name:    "PRIMARY",
				Columns: []IndexColumn{{Name: def.Name.String()}},
				Unique:  true,
				Primary: true,
			})
		case sqlparser.ColKeyUnique, sqlparser.ColKeyUniqueKey:
			table.Indexes = append(table.Indexes, &Index{
				Name:    def.Name.String(),
				Columns: []IndexColumn{{Name: def.Name.String()}},
				Unique:  true,
			})
		}
	}

	for _, def := range create.TableSpec.Indexes {
		table.Indexes = append(table.Indexes, indexFromDefinition(def))
	}

	for _, constraint := range create.TableSpec.Constraints {
		fkDef, ok := constraint.Details.(*sqlparser.ForeignKeyDefinition)
		if !ok {
			continue
		}
		table.ForeignKeys = append(table.ForeignKeys, foreignKeyFromDefinition(constraint.Name.String(), fkDef))
	}

	applyTableOptions(table, create.TableSpec.Options)

	return table
}

func columnFromDefinition(def *sqlparser.ColumnDefinition) *Column {
	col := &Column{
		Name:     def.Name.String(),
		Type:     strings.ToLower(def.Type.Type),
		Unsigned: def.Type.Unsigned,
	}
	if def.Type.Length != nil {
		col.Length = *def.Type.Length
	}
	if def.Type.Scale != nil {
		col.Scale = *def.Type.Scale
	}
	if len(def.Type.EnumValues) > 0 {
		col.Type = fmt.Sprintf("%s(%s)", col.Type, strings.Join(def.Type.EnumValues, ","))
	}

	opts := def.Type.Options
	if opts == nil {
		return col
	}
	if opts.Null != nil && !*opts.Null {
		col.NotNull = true
	}
	col.AutoIncrement = opts.Autoincrement
	if opts.Default != nil {
		col.HasDefault = true
		col.Default = defaultLiteral(opts.Default)
	}
	if opts.Comment != nil {
		col.Comment = opts.Comment.Val
	}
	return col
}

func indexFromDefinition(def *sqlparser.IndexDefinition) *Index {
	idx := &Index{Name: def.Info.Name.String()}

	switch def.Info.Type {
	case sqlparser.IndexTypePrimary:
		idx.Name = "PRIMARY"
		idx.Primary = true
		idx.Unique = true
	case sqlparser.IndexTypeUnique:
		idx.Unique = true
	case sqlparser.IndexTypeFullText:
		idx.Flag = "FULLTEXT"
	case sqlparser.IndexTypeSpatial:
		idx.Flag = "SPATIAL"
	}

	for _, col := range def.Columns {
		ic := IndexColumn{Name: col.Column.String()}
		if col.Length != nil {
			ic.Length = *col.Length
		}
		idx.Columns = append(idx.Columns, ic)
	}

	return idx
}

func foreignKeyFromDefinition(name string, def *sqlparser.ForeignKeyDefinition) *ForeignKey {
	fk := &ForeignKey{Name: name}
	for _, col := range def.Source {
		fk.Columns = append(fk.Columns, col.String())
	}
	if ref := def.ReferenceDefinition; ref != nil {
		fk.ReferencedTable = ref.ReferencedTable.Name.String()
		for _, col := range ref.ReferencedColumns {
			fk.ReferencedColumns = append(fk.ReferencedColumns, col.String())
		}
		fk.OnDelete = referenceAction(ref.OnDelete)
		fk.OnUpdate = referenceAction(ref.OnUpdate)
	}
	return fk
}

func referenceAction(action sqlparser.ReferenceAction) string {
	switch action {
	case sqlparser.Restrict:
		return "RESTRICT"
	case sqlparser.Cascade:
		return "CASCADE"
	case sqlparser.NoAction:
		return "NO ACTION"
	case sqlparser.SetNull:
		return "SET NULL"
	case sqlparser.SetDefault:
		return "SET DEFAULT"
	default:
		return ""
	}
}

func applyTableOptions(table *Table, options sqlparser.TableOptions) {
	for _, opt := range options {
		value := opt.String
		if value == "" && opt.Value != nil {
			value = opt.Value.Val
		}
		switch strings.ToUpper(opt.Name) {
		case "ENGINE":
			table.Options.Engine = value
		case "CHARSET", "DEFAULT CHARSET", "CHARACTER SET":
			table.Options.Charset = value
		case "COLLATE", "DEFAULT COLLATE":
			table.Options.Collation = value
		case "ROW_FORMAT":
			table.Options.RowFormat = value
		case "COMMENT":
			table.Options.Comment = value
		}
	}
}

func defaultLiteral(expr sqlparser.Expr) string {
	if lit, ok := expr.(*sqlparser.Literal); ok {
		return lit.Val
	}
	return sqlparser.String(expr)
}

func declarationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".sql", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
