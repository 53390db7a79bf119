package migrator

import (
	"testing"

	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

func schemaOf(t *testing.T, tables ...*schema.Table) *schema.Schema {
	t.Helper()
	s := schema.NewSchema("test")
	for _, table := range tables {
		s.AddTable(table)
	}
	return s
}

func intColumn(name string) *schema.Column {
	return &schema.Column{Name: name, Type: "int", Length: 11, NotNull: true, HasDefault: true, Default: "0"}
}

func varcharColumn(name string, length int) *schema.Column {
	return &schema.Column{Name: name, Type: "varchar", Length: length, NotNull: true, HasDefault: true, Default: ""}
}

func TestDiffNewTable(t *testing.T) {
	live := schemaOf(t)
	expected := schemaOf(t, &schema.Table{
		Name:    "tx_ext_items",
		Columns: []*schema.Column{intColumn("uid"), varcharColumn("title", 255)},
	})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	if len(diff.NewTables) != 1 || diff.NewTables["tx_ext_items"] == nil {
		t.Fatalf("expected tx_ext_items in NewTables, got %v", diff.NewTables)
	}
	if len(diff.ChangedTables) != 0 || len(diff.RemovedTables) != 0 {
		t.Errorf("unexpected extra diff entries: %+v", diff)
	}
}

func TestDiffRemovedTable(t *testing.T) {
	live := schemaOf(t, &schema.Table{Name: "legacy", Columns: []*schema.Column{intColumn("uid")}})
	expected := schemaOf(t)

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	if diff.RemovedTables["legacy"] == nil {
		t.Fatalf("expected legacy in RemovedTables, got %v", diff.RemovedTables)
	}
}

func TestDiffChangedColumn(t *testing.T) {
	live := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{varcharColumn("title", 80)},
	})
	expected := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{varcharColumn("title", 255)},
	})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	change := diff.ChangedTables["pages"].ChangedColumns["title"]
	if change == nil {
		t.Fatal("expected title in ChangedColumns")
	}
	if change.From.Length != 80 || change.To.Length != 255 {
		t.Errorf("change pair wrong: from=%d to=%d", change.From.Length, change.To.Length)
	}
}

func TestDiffDetectsColumnRename(t *testing.T) {
	live := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{varcharColumn("old_field", 255)},
	})
	expected := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{varcharColumn("new_field", 255)},
	})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	tableDiff := diff.ChangedTables["pages"]
	if tableDiff == nil {
		t.Fatal("expected pages in ChangedTables")
	}
	renamed := tableDiff.RenamedColumns["old_field"]
	if renamed == nil || renamed.Name != "new_field" {
		t.Errorf("expected old_field -> new_field rename, got %+v", tableDiff.RenamedColumns)
	}
	if len(tableDiff.AddedColumns) != 0 || len(tableDiff.RemovedColumns) != 0 {
		t.Errorf("rename must absorb the add/remove pair: %+v", tableDiff)
	}
}

func TestDiffDetectsIndexRename(t *testing.T) {
	live := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("pid")},
		Indexes: []*schema.Index{{Name: "old_idx", Columns: []schema.IndexColumn{{Name: "pid"}}}},
	})
	expected := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("pid")},
		Indexes: []*schema.Index{{Name: "new_idx", Columns: []schema.IndexColumn{{Name: "pid"}}}},
	})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	tableDiff := diff.ChangedTables["pages"]
	if len(tableDiff.RenamedIndexes) != 1 {
		t.Fatalf("expected one renamed index, got %+v", tableDiff)
	}
	if tableDiff.RenamedIndexes[0].OldName != "old_idx" || tableDiff.RenamedIndexes[0].Index.Name != "new_idx" {
		t.Errorf("rename pair wrong: %+v", tableDiff.RenamedIndexes[0])
	}
}

func TestDiffIdenticalSchemasIsEmpty(t *testing.T) {
	table := &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("uid"), varcharColumn("title", 255)},
		Indexes: []*schema.Index{{Name: "PRIMARY", Primary: true, Unique: true, Columns: []schema.IndexColumn{{Name: "uid"}}}},
	}

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", schemaOf(t, table.Clone()), schemaOf(t, table.Clone()))

	if !diff.IsEmpty() {
		t.Errorf("identical schemas must diff to empty, got %+v", diff)
	}
}

func TestDiffForeignKeyChange(t *testing.T) {
	liveFK := &schema.ForeignKey{
		Name: "fk_parent", Columns: []string{"pid"},
		ReferencedTable: "pages", ReferencedColumns: []string{"uid"}, OnDelete: "RESTRICT",
	}
	expectedFK := liveFK.Clone()
	expectedFK.OnDelete = "CASCADE"

	live := schemaOf(t, &schema.Table{Name: "tt_content", Columns: []*schema.Column{intColumn("pid")}, ForeignKeys: []*schema.ForeignKey{liveFK}})
	expected := schemaOf(t, &schema.Table{Name: "tt_content", Columns: []*schema.Column{intColumn("pid")}, ForeignKeys: []*schema.ForeignKey{expectedFK}})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	if diff.ChangedTables["tt_content"].ChangedForeignKeys["fk_parent"] == nil {
		t.Errorf("expected changed foreign key, got %+v", diff.ChangedTables["tt_content"])
	}
}

func TestDiffIgnoresIntrospectedTableOptions(t *testing.T) {
	// Live MySQL tables always report an engine and a collation; a
	// declaration that sets no options must not diff against them.
	live := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("uid")},
		Options: schema.TableOptions{Engine: "InnoDB", Charset: "utf8mb4", Collation: "utf8mb4_unicode_ci"},
	})
	expected := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("uid")},
	})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	if !diff.IsEmpty() {
		t.Fatalf("declaration without options must not diff against introspected options: %+v", diff.ChangedTables["pages"])
	}
}

func TestDiffDeclaredTableOptionChange(t *testing.T) {
	live := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("uid")},
		Options: schema.TableOptions{Engine: "MyISAM", Collation: "utf8mb4_unicode_ci"},
	})
	expected := schemaOf(t, &schema.Table{
		Name:    "pages",
		Columns: []*schema.Column{intColumn("uid")},
		Options: schema.TableOptions{Engine: "InnoDB"},
	})

	diff := NewDiffer(platform.FamilyMySQL).Diff("default", live, expected)

	tableDiff := diff.ChangedTables["pages"]
	if tableDiff == nil || tableDiff.ChangedOptions == nil {
		t.Fatalf("declared engine change must be detected, got %+v", diff.ChangedTables)
	}
	statement := NewBuilder(platform.FamilyMySQL).TableOptionsSQL("pages", *tableDiff.ChangedOptions)
	if statement != "ALTER TABLE `pages` ENGINE=InnoDB" {
		t.Errorf("unexpected option statement: %q", statement)
	}
}
