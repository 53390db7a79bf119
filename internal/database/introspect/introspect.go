package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"nexus-migrator/internal/database"
	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

// Introspector reads the live schema of a connection into the canonical
// schema model.
type Introspector struct {
	conn *database.Connection
}

// NewIntrospector creates an introspector for the given connection.
func NewIntrospector(conn *database.Connection) *Introspector {
	return &Introspector{conn: conn}
}

// ReadSchema reads all tables of the connection's database.
func (i *Introspector) ReadSchema(ctx context.Context) (*schema.Schema, error) {
	tableNames, err := i.listTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	result := schema.NewSchema(i.conn.Config.Database)
	for _, name := range tableNames {
		table, err := i.readTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read table %s: %w", name, err)
		}
		result.AddTable(table)
	}

	return result, nil
}

// RowCount counts the rows of a single table.
func (i *Introspector) RowCount(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", platform.Quote(i.conn.Family, tableName))

	var count int64
	if err := i.conn.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", tableName, err)
	}
	return count, nil
}

// readTable reads columns, indexes, foreign keys and options of one table.
func (i *Introspector) readTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	columns, err := i.readColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	table.Columns = columns

	indexes, err := i.readIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}
	table.Indexes = indexes

	foreignKeys, err := i.readForeignKeys(ctx, tableName)
	if err != nil {
		return nil, err
	}
	table.ForeignKeys = foreignKeys

	if i.conn.Family == platform.FamilyMySQL {
		options, err := i.readTableOptions(ctx, tableName)
		if err != nil {
			return nil, err
		}
		table.Options = options
	}

	return table, nil
}

// listTables returns the base table names of the current database, sorted.
func (i *Introspector) listTables(ctx context.Context) ([]string, error) {
	rows, err := i.conn.DB.QueryContext(ctx, i.tableQuery(), i.tableQueryArgs()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

func (i *Introspector) tableQuery() string {
	switch i.conn.Family {
	case platform.FamilyMySQL:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE'"
	case platform.FamilyPostgres:
		return "SELECT tablename FROM pg_tables WHERE schemaname = current_schema()"
	case platform.FamilyOracle:
		return "SELECT table_name FROM user_tables"
	default:
		return "SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE'"
	}
}

func (i *Introspector) tableQueryArgs() []any {
	if i.conn.Family == platform.FamilyMySQL {
		return []any{i.conn.Config.Database}
	}
	return nil
}

// readColumns reads the column definitions of a table in ordinal order.
func (i *Introspector) readColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	if i.conn.Family == platform.FamilyMySQL {
		return i.readColumnsMySQL(ctx, tableName)
	}
	return i.readColumnsGeneric(ctx, tableName)
}

func (i *Introspector) readColumnsMySQL(ctx context.Context, tableName string) ([]*schema.Column, error) {
	query := `SELECT column_name, column_type, is_nullable, column_default, extra, column_comment
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`

	rows, err := i.conn.DB.QueryContext(ctx, query, i.conn.Config.Database, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*schema.Column
	for rows.Next() {
		var name, columnType, nullable, extra, comment string
		var columnDefault sql.NullString
		if err := rows.Scan(&name, &columnType, &nullable, &columnDefault, &extra, &comment); err != nil {
			return nil, err
		}

		column := parseColumnType(columnType)
		column.Name = name
		column.NotNull = strings.EqualFold(nullable, "NO")
		column.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		column.HasDefault = columnDefault.Valid
		column.Default = columnDefault.String
		column.Comment = comment

		columns = append(columns, column)
	}
	return columns, rows.Err()
}

func (i *Introspector) readColumnsGeneric(ctx context.Context, tableName string) ([]*schema.Column, error) {
	query := `SELECT column_name, data_type, is_nullable, column_default,
		COALESCE(character_maximum_length, COALESCE(numeric_precision, 0)), COALESCE(numeric_scale, 0)
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`
	args := []any{tableName}

	if i.conn.Family != platform.FamilyPostgres {
		query = strings.Replace(query, "$1", "?", 1)
	}

	rows, err := i.conn.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*schema.Column
	for rows.Next() {
		var name, dataType, nullable string
		var columnDefault sql.NullString
		var length, scale int
		if err := rows.Scan(&name, &dataType, &nullable, &columnDefault, &length, &scale); err != nil {
			return nil, err
		}

		columns = append(columns, &schema.Column{
			Name:       name,
			Type:       strings.ToLower(dataType),
			Length:     length,
			Scale:      scale,
			NotNull:    strings.EqualFold(nullable, "NO"),
			HasDefault: columnDefault.Valid,
			Default:    columnDefault.String,
		})
	}
	return columns, rows.Err()
}

// parseColumnType splits a MySQL COLUMN_TYPE value such as
// "int(11) unsigned" or "decimal(10,2)" into its parts. Enum and set keep
// their value list as part of the type so the declared form round-trips.
func parseColumnType(columnType string) *schema.Column {
	column := &schema.Column{}
	rest := strings.ToLower(strings.TrimSpace(columnType))

	if idx := strings.Index(rest, "("); idx >= 0 {
		base := rest[:idx]
		end := strings.LastIndex(rest, ")")
		if end > idx {
			args := rest[idx+1 : end]
			if base == "enum" || base == "set" {
				column.Type = base + "(" + args + ")"
			} else {
				column.Type = base
				parts := strings.SplitN(args, ",", 2)
				if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
					column.Length = n
				}
				if len(parts) == 2 {
					if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
						column.Scale = n
					}
				}
			}
			rest = rest[end+1:]
		} else {
			column.Type = base
			rest = ""
		}
	} else {
		fields := strings.Fields(rest)
		if len(fields) > 0 {
			column.Type = fields[0]
			rest = strings.TrimPrefix(rest, fields[0])
		}
	}

	column.Unsigned = strings.Contains(rest, "unsigned")
	return column
}

// readIndexes reads indexes and groups their columns by index name.
func (i *Introspector) readIndexes(ctx context.Context, tableName string) ([]*schema.Index, error) {
	query, args := i.indexQuery(tableName)

	rows, err := i.conn.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexMap := make(map[string]*schema.Index)
	var order []string
	for rows.Next() {
		var indexName, columnName string
		var unique bool
		var subPart sql.NullInt64
		if err := rows.Scan(&indexName, &columnName, &unique, &subPart); err != nil {
			return nil, err
		}

		idx, exists := indexMap[indexName]
		if !exists {
			idx = &schema.Index{
				Name:    indexName,
				Unique:  unique,
				Primary: strings.EqualFold(indexName, "PRIMARY"),
			}
			indexMap[indexName] = idx
			order = append(order, indexName)
		}
		idx.Columns = append(idx.Columns, schema.IndexColumn{
			Name:   columnName,
			Length: int(subPart.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]*schema.Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, indexMap[name])
	}
	return indexes, nil
}

func (i *Introspector) indexQuery(tableName string) (string, []any) {
	switch i.conn.Family {
	case platform.FamilyMySQL:
		return `SELECT index_name, column_name, NOT non_unique, sub_part
			FROM information_schema.statistics
			WHERE table_schema = ? AND table_name = ?
			ORDER BY index_name, seq_in_index`, []any{i.conn.Config.Database, tableName}
	case platform.FamilyPostgres:
		return `SELECT ix.relname, a.attname, i.indisunique OR i.indisprimary, 0
			FROM pg_index i
			JOIN pg_class t ON t.oid = i.indrelid
			JOIN pg_class ix ON ix.oid = i.indexrelid
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(i.indkey)
			WHERE t.relname = $1
			ORDER BY ix.relname, array_position(i.indkey, a.attnum)`, []any{tableName}
	default:
		return `SELECT index_name, column_name, NOT non_unique, NULL
			FROM information_schema.statistics
			WHERE table_name = ?
			ORDER BY index_name, seq_in_index`, []any{tableName}
	}
}

// readForeignKeys reads foreign key constraints of a table.
func (i *Introspector) readForeignKeys(ctx context.Context, tableName string) ([]*schema.ForeignKey, error) {
	query, args := i.foreignKeyQuery(tableName)
	if query == "" {
		return nil, nil
	}

	rows, err := i.conn.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fkMap := make(map[string]*schema.ForeignKey)
	var order []string
	for rows.Next() {
		var name, columnName, referencedTable, referencedColumn, onDelete, onUpdate string
		if err := rows.Scan(&name, &columnName, &referencedTable, &referencedColumn, &onDelete, &onUpdate); err != nil {
			return nil, err
		}

		fk, exists := fkMap[name]
		if !exists {
			fk = &schema.ForeignKey{
				Name:            name,
				ReferencedTable: referencedTable,
				OnDelete:        onDelete,
				OnUpdate:        onUpdate,
			}
			fkMap[name] = fk
			order = append(order, name)
		}
		fk.Columns = append(fk.Columns, columnName)
		fk.ReferencedColumns = append(fk.ReferencedColumns, referencedColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	foreignKeys := make([]*schema.ForeignKey, 0, len(order))
	for _, name := range order {
		foreignKeys = append(foreignKeys, fkMap[name])
	}
	return foreignKeys, nil
}

func (i *Introspector) foreignKeyQuery(tableName string) (string, []any) {
	switch i.conn.Family {
	case platform.FamilyMySQL:
		return `SELECT kcu.constraint_name, kcu.column_name, kcu.referenced_table_name,
			kcu.referenced_column_name, rc.delete_rule, rc.update_rule
			FROM information_schema.key_column_usage kcu
			JOIN information_schema.referential_constraints rc
				ON rc.constraint_schema = kcu.constraint_schema AND rc.constraint_name = kcu.constraint_name
			WHERE kcu.table_schema = ? AND kcu.table_name = ? AND kcu.referenced_table_name IS NOT NULL
			ORDER BY kcu.constraint_name, kcu.ordinal_position`, []any{i.conn.Config.Database, tableName}
	case platform.FamilyPostgres:
		return `SELECT kcu.constraint_name, kcu.column_name, ccu.table_name,
			ccu.column_name, rc.delete_rule, rc.update_rule
			FROM information_schema.key_column_usage kcu
			JOIN information_schema.referential_constraints rc ON rc.constraint_name = kcu.constraint_name
			JOIN information_schema.constraint_column_usage ccu ON ccu.constraint_name = rc.unique_constraint_name
			WHERE kcu.table_name = $1
			ORDER BY kcu.constraint_name, kcu.ordinal_position`, []any{tableName}
	default:
		return "", nil
	}
}

// readTableOptions reads MySQL table level options.
func (i *Introspector) readTableOptions(ctx context.Context, tableName string) (schema.TableOptions, error) {
	query := `SELECT COALESCE(engine, ''), COALESCE(t.table_collation, ''),
		COALESCE(ccsa.character_set_name, ''), COALESCE(row_format, ''), COALESCE(table_comment, '')
		FROM information_schema.tables t
		LEFT JOIN information_schema.collation_character_set_applicability ccsa
			ON ccsa.collation_name = t.table_collation
		WHERE t.table_schema = ? AND t.table_name = ?`

	var options schema.TableOptions
	err := i.conn.DB.QueryRowContext(ctx, query, i.conn.Config.Database, tableName).Scan(
		&options.Engine, &options.Collation, &options.Charset, &options.RowFormat, &options.Comment)
	if err != nil {
		if err == sql.ErrNoRows {
			return schema.TableOptions{}, nil
		}
		return schema.TableOptions{}, err
	}
	return options, nil
}
