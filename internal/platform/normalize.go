package platform

import (
	"crypto/sha1"
	"encoding/hex"

	"nexus-migrator/internal/schema"
)

// indexNameSuffixLength is the number of hash characters appended when an
// index name must be made unique schema-wide.
const indexNameSuffixLength = 6

// NormalizeTables adapts declared table definitions to the constraints of the
// target family. The input tables are not modified; adapted copies are
// returned. Platform-capability mismatches never fail: the definition is
// silently adjusted instead.
func NormalizeTables(family Family, tables []*schema.Table) []*schema.Table {
	normalized := make([]*schema.Table, 0, len(tables))
	for _, table := range tables {
		normalized = append(normalized, NormalizeTable(family, table))
	}
	return normalized
}

// NormalizeTable adapts a single table definition for the target family.
func NormalizeTable(family Family, table *schema.Table) *schema.Table {
	adapted := table.Clone()

	for _, idx := range adapted.Indexes {
		if RequiresUniqueIndexNames(family) && !idx.Primary {
			idx.Name = uniqueIndexName(family, adapted.Name, idx.Name)
		}
		if !SupportsPrefixIndexes(family) {
			for n := range idx.Columns {
				idx.Columns[n].Length = 0
			}
		}
	}

	if !SupportsTableOptions(family) {
		adapted.Options = schema.TableOptions{}
	}

	return adapted
}

// uniqueIndexName appends a short deterministic hash of table and index name
// so that the same declared index name can recur across tables on platforms
// with schema-wide index namespaces.
func uniqueIndexName(family Family, tableName, indexName string) string {
	sum := sha1.Sum([]byte(tableName + "." + indexName))
	suffix := "_" + hex.EncodeToString(sum[:])[:indexNameSuffixLength]

	max := MaxColumnNameLength(family)
	base := indexName
	if len(base)+len(suffix) > max {
		base = TruncateIdentifier(base, max-len(suffix))
	}
	return base + suffix
}
