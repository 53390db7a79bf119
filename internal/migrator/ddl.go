package migrator

import (
	"fmt"
	"strconv"
	"strings"

	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

// Builder renders schema objects into DDL statements for one platform
// family.
type Builder struct {
	family platform.Family
}

// NewBuilder creates a DDL builder for the given platform family.
func NewBuilder(family platform.Family) *Builder {
	return &Builder{family: family}
}

func (b *Builder) quote(identifier string) string {
	return platform.Quote(b.family, identifier)
}

// ColumnDefinitionSQL renders a column declaration without the leading
// keyword, e.g. `title` varchar(255) NOT NULL DEFAULT ''.
func (b *Builder) ColumnDefinitionSQL(column *schema.Column) string {
	var sb strings.Builder
	sb.WriteString(b.quote(column.Name))
	sb.WriteString(" ")
	sb.WriteString(b.columnTypeSQL(column))

	if column.Unsigned && b.family == platform.FamilyMySQL {
		sb.WriteString(" unsigned")
	}
	if column.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if column.HasDefault {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(b.defaultValueSQL(column))
	}
	if column.AutoIncrement && b.family == platform.FamilyMySQL {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if column.Comment != "" && b.family == platform.FamilyMySQL {
		sb.WriteString(" COMMENT ")
		sb.WriteString(quoteLiteral(column.Comment))
	}

	return sb.String()
}

func (b *Builder) columnTypeSQL(column *schema.Column) string {
	if column.Length > 0 {
		if column.Scale > 0 {
			return fmt.Sprintf("%s(%d,%d)", column.Type, column.Length, column.Scale)
		}
		return fmt.Sprintf("%s(%d)", column.Type, column.Length)
	}
	return column.Type
}

func (b *Builder) defaultValueSQL(column *schema.Column) string {
	value := column.Default
	if value == "" {
		return "''"
	}

	upper := strings.ToUpper(value)
	if upper == "NULL" || strings.HasPrefix(upper, "CURRENT_TIMESTAMP") {
		return value
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	return quoteLiteral(value)
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// CreateTableSQL renders one CREATE TABLE statement for the full table.
func (b *Builder) CreateTableSQL(table *schema.Table) string {
	var parts []string
	for _, column := range table.Columns {
		parts = append(parts, b.ColumnDefinitionSQL(column))
	}
	for _, index := range table.Indexes {
		parts = append(parts, b.indexDefinitionSQL(index))
	}
	for _, fk := range table.ForeignKeys {
		parts = append(parts, b.foreignKeyDefinitionSQL(fk))
	}

	sql := fmt.Sprintf("CREATE TABLE %s (%s)", b.quote(table.Name), strings.Join(parts, ", "))

	if b.family == platform.FamilyMySQL {
		sql += b.tableOptionsSuffix(table.Options)
	}
	return sql
}

func (b *Builder) indexDefinitionSQL(index *schema.Index) string {
	columns := b.indexColumnsSQL(index)
	switch {
	case index.Primary:
		return fmt.Sprintf("PRIMARY KEY (%s)", columns)
	case index.Unique:
		return fmt.Sprintf("UNIQUE KEY %s (%s)", b.quote(index.Name), columns)
	default:
		return fmt.Sprintf("KEY %s (%s)", b.quote(index.Name), columns)
	}
}

func (b *Builder) indexColumnsSQL(index *schema.Index) string {
	if !platform.SupportsPrefixIndexes(b.family) {
		return b.quoteAll(index.ColumnNames())
	}
	refs := make([]string, 0, len(index.Columns))
	for _, column := range index.Columns {
		ref := b.quote(column.Name)
		if column.Length > 0 {
			ref += fmt.Sprintf("(%d)", column.Length)
		}
		refs = append(refs, ref)
	}
	return strings.Join(refs, ", ")
}

func (b *Builder) foreignKeyDefinitionSQL(fk *schema.ForeignKey) string {
	sql := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		b.quote(fk.Name),
		b.quoteAll(fk.Columns),
		b.quote(fk.ReferencedTable),
		b.quoteAll(fk.ReferencedColumns))
	if fk.OnDelete != "" {
		sql += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		sql += " ON UPDATE " + fk.OnUpdate
	}
	return sql
}

func (b *Builder) quoteAll(identifiers []string) string {
	quoted := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		quoted = append(quoted, b.quote(identifier))
	}
	return strings.Join(quoted, ", ")
}

func (b *Builder) tableOptionsSuffix(options schema.TableOptions) string {
	var sb strings.Builder
	if options.Engine != "" {
		sb.WriteString(" ENGINE=" + options.Engine)
	}
	if options.Charset != "" {
		sb.WriteString(" DEFAULT CHARSET=" + options.Charset)
	}
	if options.Collation != "" {
		sb.WriteString(" COLLATE=" + options.Collation)
	}
	if options.RowFormat != "" {
		sb.WriteString(" ROW_FORMAT=" + options.RowFormat)
	}
	if options.Comment != "" {
		sb.WriteString(" COMMENT=" + quoteLiteral(options.Comment))
	}
	return sb.String()
}

// AddColumnSQL renders an additive column statement.
func (b *Builder) AddColumnSQL(tableName string, column *schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", b.quote(tableName), b.ColumnDefinitionSQL(column))
}

// ChangeColumnSQL renders an in-place column redefinition.
func (b *Builder) ChangeColumnSQL(tableName string, from, to *schema.Column) string {
	if b.family == platform.FamilyMySQL {
		return fmt.Sprintf("ALTER TABLE %s CHANGE %s %s",
			b.quote(tableName), b.quote(from.Name), b.ColumnDefinitionSQL(to))
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
		b.quote(tableName), b.quote(to.Name), b.columnTypeSQL(to))
}

// RenameColumnSQL renders a rename that keeps the column definition intact.
func (b *Builder) RenameColumnSQL(tableName string, from, to *schema.Column) string {
	if b.family == platform.FamilyMySQL {
		return fmt.Sprintf("ALTER TABLE %s CHANGE %s %s",
			b.quote(tableName), b.quote(from.Name), b.ColumnDefinitionSQL(to))
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		b.quote(tableName), b.quote(from.Name), b.quote(to.Name))
}

// DropColumnSQL renders a destructive column drop.
func (b *Builder) DropColumnSQL(tableName, columnName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", b.quote(tableName), b.quote(columnName))
}

// AddIndexSQL renders an index creation statement.
func (b *Builder) AddIndexSQL(tableName string, index *schema.Index) string {
	if index.Primary {
		return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)",
			b.quote(tableName), b.indexColumnsSQL(index))
	}
	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, b.quote(index.Name), b.quote(tableName), b.indexColumnsSQL(index))
}

// DropIndexSQL renders an index removal statement.
func (b *Builder) DropIndexSQL(tableName, indexName string) string {
	switch b.family {
	case platform.FamilyMySQL:
		return fmt.Sprintf("DROP INDEX %s ON %s", b.quote(indexName), b.quote(tableName))
	default:
		return fmt.Sprintf("DROP INDEX %s", b.quote(indexName))
	}
}

// RenameIndexSQL renders an index rename.
func (b *Builder) RenameIndexSQL(tableName, oldName string, index *schema.Index) string {
	switch b.family {
	case platform.FamilyMySQL:
		return fmt.Sprintf("ALTER TABLE %s RENAME INDEX %s TO %s",
			b.quote(tableName), b.quote(oldName), b.quote(index.Name))
	case platform.FamilyPostgres:
		return fmt.Sprintf("ALTER INDEX %s RENAME TO %s", b.quote(oldName), b.quote(index.Name))
	default:
		return fmt.Sprintf("ALTER INDEX %s RENAME TO %s", b.quote(oldName), b.quote(index.Name))
	}
}

// AddForeignKeySQL renders a foreign key creation statement.
func (b *Builder) AddForeignKeySQL(tableName string, fk *schema.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", b.quote(tableName), b.foreignKeyDefinitionSQL(fk))
}

// DropForeignKeySQL renders a foreign key removal statement.
func (b *Builder) DropForeignKeySQL(tableName, fkName string) string {
	if b.family == platform.FamilyMySQL {
		return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", b.quote(tableName), b.quote(fkName))
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", b.quote(tableName), b.quote(fkName))
}

// RenameTableSQL renders a table rename.
func (b *Builder) RenameTableSQL(oldName, newName string) string {
	if b.family == platform.FamilyMySQL {
		return fmt.Sprintf("RENAME TABLE %s TO %s", b.quote(oldName), b.quote(newName))
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", b.quote(oldName), b.quote(newName))
}

// DropTableSQL renders a destructive table drop.
func (b *Builder) DropTableSQL(tableName string) string {
	return fmt.Sprintf("DROP TABLE %s", b.quote(tableName))
}

// TableOptionsSQL renders a table option change. Only meaningful on MySQL.
// Returns the empty string when no option field is set, so callers never
// emit an ALTER without a clause.
func (b *Builder) TableOptionsSQL(tableName string, options schema.TableOptions) string {
	suffix := b.tableOptionsSuffix(options)
	if suffix == "" {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s%s", b.quote(tableName), suffix)
}
