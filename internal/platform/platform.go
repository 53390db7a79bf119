package platform

import (
	"strings"

	"nexus-migrator/internal/model"
)

// Family is the canonical platform family a connection's database belongs to.
// Driver variants (aliases) resolve to one family before any capability or
// identifier-length lookup.
type Family string

const (
	FamilyMySQL      Family = "mysql"
	FamilyPostgres   Family = "postgres"
	FamilyOracle     Family = "oracle"
	FamilySnowflake  Family = "snowflake"
	FamilyClickHouse Family = "clickhouse"
)

// defaultMaxIdentifierLength applies when the family is unrecognized.
const defaultMaxIdentifierLength = 64

// aliases maps database types and driver variant names to canonical families.
var aliases = map[string]Family{
	"mysql":      FamilyMySQL,
	"mariadb":    FamilyMySQL,
	"percona":    FamilyMySQL,
	"postgresql": FamilyPostgres,
	"postgres":   FamilyPostgres,
	"pgsql":      FamilyPostgres,
	"oracle":     FamilyOracle,
	"snowflake":  FamilySnowflake,
	"clickhouse": FamilyClickHouse,
}

type limits struct {
	table  int
	column int
}

var identifierLimits = map[Family]limits{
	FamilyMySQL:      {table: 64, column: 64},
	FamilyPostgres:   {table: 63, column: 63},
	FamilyOracle:     {table: 128, column: 128},
	FamilySnowflake:  {table: 255, column: 255},
	FamilyClickHouse: {table: 206, column: 206},
}

// Resolve maps a database type or driver variant name to its canonical
// family. Unrecognized names resolve to the MySQL family, which carries the
// most conservative defaults.
func Resolve(name string) Family {
	if family, ok := aliases[strings.ToLower(name)]; ok {
		return family
	}
	return FamilyMySQL
}

// ResolveType maps a configured database type to its canonical family.
func ResolveType(dbType model.DatabaseType) Family {
	return Resolve(string(dbType))
}

// MaxTableNameLength returns the maximum table identifier length for the
// family, with a default fallback for unrecognized families.
func MaxTableNameLength(family Family) int {
	if l, ok := identifierLimits[family]; ok {
		return l.table
	}
	return defaultMaxIdentifierLength
}

// MaxColumnNameLength returns the maximum column identifier length for the
// family, with a default fallback for unrecognized families.
func MaxColumnNameLength(family Family) int {
	if l, ok := identifierLimits[family]; ok {
		return l.column
	}
	return defaultMaxIdentifierLength
}

// RequiresUniqueIndexNames reports whether the family requires index names to
// be unique schema-wide rather than per table.
func RequiresUniqueIndexNames(family Family) bool {
	switch family {
	case FamilyPostgres, FamilyOracle:
		return true
	default:
		return false
	}
}

// SupportsPrefixIndexes reports whether the family supports substring index
// lengths on index column references.
func SupportsPrefixIndexes(family Family) bool {
	return family == FamilyMySQL
}

// SupportsTableOptions reports whether the family exposes MySQL-style table
// options (engine, collation, row format) worth diffing.
func SupportsTableOptions(family Family) bool {
	return family == FamilyMySQL
}

// Quote quotes an identifier for the family's dialect.
func Quote(family Family, identifier string) string {
	switch family {
	case FamilyMySQL, FamilyClickHouse:
		return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
	}
}

// TruncateIdentifier shortens an identifier to the given maximum length.
func TruncateIdentifier(identifier string, max int) string {
	if max <= 0 || len(identifier) <= max {
		return identifier
	}
	return identifier[:max]
}
