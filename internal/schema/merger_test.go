package schema

import (
	"testing"
)

func TestMergeTablesUnion(t *testing.T) {
	declarations := []*Table{
		{
			Name: "tt_content",
			Columns: []*Column{
				{Name: "uid", Type: "int", Length: 11, NotNull: true, AutoIncrement: true},
				{Name: "header", Type: "varchar", Length: 255},
			},
		},
		{
			Name: "tt_content",
			Columns: []*Column{
				{Name: "bodytext", Type: "text"},
			},
			Indexes: []*Index{
				{Name: "parent", Columns: []IndexColumn{{Name: "pid"}}},
			},
		},
	}

	merged := MergeTables(declarations)
	if len(merged) != 1 {
		t.Fatalf("expected one merged table, got %d", len(merged))
	}

	table := merged["tt_content"]
	if len(table.Columns) != 3 {
		t.Errorf("expected 3 union-merged columns, got %d", len(table.Columns))
	}
	if table.Column("bodytext") == nil {
		t.Errorf("second declaration's column missing from merge result")
	}
	if table.Index("parent") == nil {
		t.Errorf("second declaration's index missing from merge result")
	}
}

func TestMergeTablesLastWriteWins(t *testing.T) {
	declarations := []*Table{
		{
			Name: "pages",
			Columns: []*Column{
				{Name: "title", Type: "varchar", Length: 80},
			},
		},
		{
			Name: "pages",
			Columns: []*Column{
				{Name: "title", Type: "varchar", Length: 255, NotNull: true},
			},
		},
	}

	table := MergeTables(declarations)["pages"]
	title := table.Column("title")
	if title.Length != 255 || !title.NotNull {
		t.Errorf("later declaration should win, got length=%d notNull=%v", title.Length, title.NotNull)
	}
	if len(table.Columns) != 1 {
		t.Errorf("recurring column name must not duplicate, got %d columns", len(table.Columns))
	}
}

func TestMergeTablesConflictingTypesSilently(t *testing.T) {
	declarations := []*Table{
		{Name: "pages", Columns: []*Column{{Name: "sorting", Type: "int", Length: 11}}},
		{Name: "pages", Columns: []*Column{{Name: "sorting", Type: "varchar", Length: 30}}},
	}

	// Divergent types for the same column are not an error
	table := MergeTables(declarations)["pages"]
	if got := table.Column("sorting").Type; got != "varchar" {
		t.Errorf("last declared type should win silently, got %q", got)
	}
}

func TestMergeTablesDoesNotAliasInput(t *testing.T) {
	decl := &Table{
		Name:    "pages",
		Columns: []*Column{{Name: "uid", Type: "int", Length: 11}},
	}

	merged := MergeTables([]*Table{decl})
	merged["pages"].Columns[0].Length = 20

	if decl.Columns[0].Length != 11 {
		t.Errorf("merge result must not alias the input declaration")
	}
}
