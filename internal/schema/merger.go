package schema

// MergeTables folds an ordered sequence of partial table declarations into one
// canonical table per name. Several declaration sources may contribute pieces
// of the same table; columns, indexes and foreign keys are union-merged, and
// when the same name recurs the later declaration replaces the earlier one in
// place. Conflicting definitions for the same column name are not an error:
// last write wins silently.
func MergeTables(declarations []*Table) map[string]*Table {
	merged := make(map[string]*Table)

	for _, decl := range declarations {
		existing, ok := merged[decl.Name]
		if !ok {
			merged[decl.Name] = decl.Clone()
			continue
		}
		mergeInto(existing, decl)
	}

	return merged
}

func mergeInto(dst, src *Table) {
	for _, col := range src.Columns {
		if replaceColumn(dst, col) {
			continue
		}
		dst.Columns = append(dst.Columns, col.Clone())
	}
	for _, idx := range src.Indexes {
		if replaceIndex(dst, idx) {
			continue
		}
		dst.Indexes = append(dst.Indexes, idx.Clone())
	}
	for _, fk := range src.ForeignKeys {
		if replaceForeignKey(dst, fk) {
			continue
		}
		dst.ForeignKeys = append(dst.ForeignKeys, fk.Clone())
	}

	if src.Options.Engine != "" {
		dst.Options.Engine = src.Options.Engine
	}
	if src.Options.Charset != "" {
		dst.Options.Charset = src.Options.Charset
	}
	if src.Options.Collation != "" {
		dst.Options.Collation = src.Options.Collation
	}
	if src.Options.RowFormat != "" {
		dst.Options.RowFormat = src.Options.RowFormat
	}
	if src.Options.Comment != "" {
		dst.Options.Comment = src.Options.Comment
	}
}

func replaceColumn(t *Table, col *Column) bool {
	for n, existing := range t.Columns {
		if existing.Name == col.Name {
			t.Columns[n] = col.Clone()
			return true
		}
	}
	return false
}

func replaceIndex(t *Table, idx *Index) bool {
	for n, existing := range t.Indexes {
		if existing.Name == idx.Name {
			t.Indexes[n] = idx.Clone()
			return true
		}
	}
	return false
}

func replaceForeignKey(t *Table, fk *ForeignKey) bool {
	for n, existing := range t.ForeignKeys {
		if existing.Name == fk.Name {
			t.ForeignKeys[n] = fk.Clone()
			return true
		}
	}
	return false
}
