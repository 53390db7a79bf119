package migrator

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

type stubExecutor struct {
	executed []string
	failOn   string
}

func (s *stubExecutor) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	s.executed = append(s.executed, query)
	if s.failOn != "" && strings.Contains(query, s.failOn) {
		return nil, errors.New("syntax error near 'bogus'")
	}
	return nil, nil
}

func installDiff(t *testing.T) *SchemaDiff {
	t.Helper()
	diff := NewSchemaDiff("default", schemaOf(t))

	diff.NewTables["tx_ext_items"] = &schema.Table{
		Name:    "tx_ext_items",
		Columns: []*schema.Column{intColumn("uid"), varcharColumn("title", 255)},
	}

	tableDiff := NewTableDiff(&schema.Table{Name: "pages"}, &schema.Table{Name: "pages"})
	tableDiff.AddedColumns["subtitle"] = varcharColumn("subtitle", 255)
	tableDiff.ChangedColumns["title"] = &ColumnDiff{
		From: varcharColumn("title", 80),
		To:   varcharColumn("title", 255),
	}
	tableDiff.RemovedColumns["old_field"] = varcharColumn("old_field", 255)
	tableDiff.RenamedIndexes = append(tableDiff.RenamedIndexes, &RenamedIndex{
		OldName: "old_idx",
		Index:   &schema.Index{Name: "new_idx", Columns: []schema.IndexColumn{{Name: "pid"}}},
	})
	diff.ChangedTables["pages"] = tableDiff

	diff.RemovedTables["legacy"] = &schema.Table{Name: "legacy"}

	return diff
}

func TestPlanCreateOnlyIsStrictlyAdditive(t *testing.T) {
	diff := StripRemovals(installDiff(t))
	installer := NewInstaller(NewBuilder(platform.FamilyMySQL), &stubExecutor{})

	statements := installer.Plan(diff, true)

	if len(statements) == 0 {
		t.Fatal("expected planned statements")
	}
	for _, statement := range statements {
		upper := strings.ToUpper(statement)
		if strings.Contains(upper, "DROP") || strings.Contains(upper, "RENAME") || strings.Contains(upper, " CHANGE ") {
			t.Errorf("createOnly plan must be additive, got %q", statement)
		}
		if !strings.HasPrefix(upper, "CREATE TABLE") && !strings.Contains(upper, " ADD ") && !strings.HasPrefix(upper, "CREATE INDEX") && !strings.HasPrefix(upper, "CREATE UNIQUE INDEX") {
			t.Errorf("unexpected statement class in createOnly plan: %q", statement)
		}
	}
}

func TestPlanFullIncludesChanges(t *testing.T) {
	diff := StripRemovals(installDiff(t))
	installer := NewInstaller(NewBuilder(platform.FamilyMySQL), &stubExecutor{})

	statements := installer.Plan(diff, false)

	foundChange := false
	foundIndexRename := false
	for _, statement := range statements {
		if strings.Contains(statement, "CHANGE `title`") {
			foundChange = true
		}
		if strings.Contains(statement, "RENAME INDEX") {
			foundIndexRename = true
		}
		if strings.Contains(strings.ToUpper(statement), "DROP TABLE") {
			t.Errorf("install must never drop tables, got %q", statement)
		}
		if strings.Contains(statement, "old_field") {
			t.Errorf("removals must be stripped before planning, got %q", statement)
		}
	}
	if !foundChange {
		t.Error("full plan should include the column change")
	}
	if !foundIndexRename {
		t.Error("full plan should include the index rename")
	}
}

func TestPlanOrdersCreatesFirst(t *testing.T) {
	diff := StripRemovals(installDiff(t))
	installer := NewInstaller(NewBuilder(platform.FamilyMySQL), &stubExecutor{})

	statements := installer.Plan(diff, false)

	if !strings.HasPrefix(statements[0], "CREATE TABLE") {
		t.Errorf("table creation must precede alterations, first statement: %q", statements[0])
	}
}

func TestApplyRecordsErrorsPerStatement(t *testing.T) {
	executor := &stubExecutor{failOn: "subtitle"}
	installer := NewInstaller(NewBuilder(platform.FamilyMySQL), executor)

	statements := []string{
		"CREATE TABLE `a` (`uid` int(11) NOT NULL)",
		"ALTER TABLE `pages` ADD `subtitle` varchar(255)",
		"ALTER TABLE `pages` ADD `sorting` int(11)",
	}

	results := installer.Apply(context.Background(), statements)

	if len(results) != 3 {
		t.Fatalf("every statement must be reported, got %d", len(results))
	}
	if results[statements[0]] != "" {
		t.Errorf("successful statement should map to empty string, got %q", results[statements[0]])
	}
	if !strings.Contains(results[statements[1]], "syntax error") {
		t.Errorf("failed statement should carry the driver message, got %q", results[statements[1]])
	}

	// Execution continues past the failure
	if len(executor.executed) != 3 {
		t.Errorf("a failing statement must not abort the batch, executed %d", len(executor.executed))
	}
	if results[statements[2]] != "" {
		t.Errorf("statement after the failure should still apply")
	}
}

func TestPlanSkipsEmptyTableOptionsChange(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	tableDiff := NewTableDiff(&schema.Table{Name: "pages"}, &schema.Table{Name: "pages"})
	tableDiff.ChangedOptions = &schema.TableOptions{}
	diff.ChangedTables["pages"] = tableDiff

	installer := NewInstaller(NewBuilder(platform.FamilyMySQL), &stubExecutor{})
	if statements := installer.Plan(diff, false); len(statements) != 0 {
		t.Errorf("option change without a clause must not be planned: %v", statements)
	}
}

func TestStripRemovalsAfterUnrenameKeepsAdds(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	tableDiff := NewTableDiff(&schema.Table{Name: "pages"}, &schema.Table{Name: "pages"})
	tableDiff.RenamedColumns["old_field"] = varcharColumn("new_field", 255)
	diff.ChangedTables["pages"] = tableDiff

	stripped := StripRemovals(UnrenameColumns(diff))

	pages := stripped.ChangedTables["pages"]
	if pages == nil || pages.AddedColumns["new_field"] == nil {
		t.Fatalf("rename must survive as an add, got %+v", stripped.ChangedTables)
	}
	if len(pages.RenamedColumns) != 0 || len(pages.RemovedColumns) != 0 {
		t.Errorf("no rename or removal may reach the installer: %+v", pages)
	}

	statements := NewInstaller(NewBuilder(platform.FamilyMySQL), &stubExecutor{}).Plan(stripped, false)
	foundAdd := false
	for _, statement := range statements {
		if strings.Contains(statement, "ADD `new_field`") {
			foundAdd = true
		}
		if strings.Contains(statement, "old_field") {
			t.Errorf("old column name must not appear in the plan: %q", statement)
		}
	}
	if !foundAdd {
		t.Errorf("expected an add for new_field, got %v", statements)
	}
}

func TestStripRemovalsDropsStagedTables(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	staged := NewTableDiff(&schema.Table{Name: "legacy"}, nil)
	staged.NewName = "zzz_deleted_legacy"
	diff.ChangedTables["legacy"] = staged
	diff.RemovedTables["gone"] = &schema.Table{Name: "gone"}

	result := StripRemovals(diff)

	if !result.IsEmpty() {
		t.Errorf("removal-only diff must strip to empty, got %+v", result)
	}
}
