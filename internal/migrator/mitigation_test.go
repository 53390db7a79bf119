package migrator

import (
	"strings"
	"testing"

	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

// stubRouter mimics the connection registry's routing for pipeline tests.
type stubRouter struct {
	mapping     map[string]string
	defaultName string
}

func (r *stubRouter) ConnectionFor(tableName string) string {
	if conn, ok := r.mapping[tableName]; ok && conn != "" {
		return conn
	}
	return r.defaultName
}

func (r *stubRouter) DefaultName() string { return r.defaultName }
func (r *stubRouter) HasMapping() bool    { return len(r.mapping) > 0 }

func TestUnrenameColumns(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	tableDiff := NewTableDiff(&schema.Table{Name: "pages"}, &schema.Table{Name: "pages"})
	tableDiff.RenamedColumns["old_field"] = varcharColumn("new_field", 255)
	diff.ChangedTables["pages"] = tableDiff

	result := UnrenameColumns(diff)

	out := result.ChangedTables["pages"]
	if len(out.RenamedColumns) != 0 {
		t.Errorf("renames must be reversed, still have %+v", out.RenamedColumns)
	}
	if out.AddedColumns["new_field"] == nil {
		t.Errorf("expected new_field add, got %+v", out.AddedColumns)
	}
	removed := out.RemovedColumns["old_field"]
	if removed == nil || removed.Name != "old_field" {
		t.Errorf("expected old_field removal, got %+v", out.RemovedColumns)
	}

	// Input diff stays untouched
	if len(diff.ChangedTables["pages"].RenamedColumns) != 1 {
		t.Error("UnrenameColumns mutated its input")
	}
}

func TestStageTableRemovals(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	diff.RemovedTables["legacy"] = &schema.Table{Name: "legacy"}

	result := StageTableRemovals(platform.FamilyMySQL, diff)

	if len(result.RemovedTables) != 0 {
		t.Errorf("unprefixed removed table must be staged, still removed: %v", result.RemovedTables)
	}
	staged := result.ChangedTables["legacy"]
	if staged == nil || staged.NewName != "zzz_deleted_legacy" {
		t.Fatalf("expected rename to zzz_deleted_legacy, got %+v", staged)
	}
}

func TestStageTableRemovalsSkipsAlreadyPrefixed(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	diff.RemovedTables["zzz_deleted_legacy"] = &schema.Table{Name: "zzz_deleted_legacy"}

	result := StageTableRemovals(platform.FamilyMySQL, diff)

	// Already staged in a prior pass: stays a real drop candidate, and no
	// zzz_deleted_zzz_deleted_ accumulation happens.
	if result.RemovedTables["zzz_deleted_legacy"] == nil {
		t.Errorf("prefixed table must remain a drop candidate, got %+v", result)
	}
	if len(result.ChangedTables) != 0 {
		t.Errorf("prefixed table must not be re-staged, got %+v", result.ChangedTables)
	}
}

func TestStageTableRemovalsTruncatesToPlatformMax(t *testing.T) {
	max := platform.MaxTableNameLength(platform.FamilyMySQL)
	name := strings.Repeat("a", max-3)

	diff := NewSchemaDiff("default", schemaOf(t))
	diff.RemovedTables[name] = &schema.Table{Name: name}

	result := StageTableRemovals(platform.FamilyMySQL, diff)

	staged := result.ChangedTables[name]
	if staged == nil {
		t.Fatal("expected staged rename")
	}
	if len(staged.NewName) != max {
		t.Errorf("staged name length = %d, want exactly %d", len(staged.NewName), max)
	}
	if !strings.HasPrefix(staged.NewName, schema.DeletedPrefix) {
		t.Errorf("staged name lost its prefix: %q", staged.NewName)
	}
}

func TestStageColumnRemovals(t *testing.T) {
	diff := NewSchemaDiff("default", schemaOf(t))
	tableDiff := NewTableDiff(&schema.Table{Name: "pages"}, &schema.Table{Name: "pages"})
	tableDiff.RemovedColumns["old_field"] = varcharColumn("old_field", 255)
	tableDiff.RemovedColumns["zzz_deleted_gone"] = varcharColumn("zzz_deleted_gone", 255)
	diff.ChangedTables["pages"] = tableDiff

	result := StageColumnRemovals(platform.FamilyMySQL, diff)

	out := result.ChangedTables["pages"]
	renamed := out.RenamedColumns["old_field"]
	if renamed == nil || renamed.Name != "zzz_deleted_old_field" {
		t.Errorf("expected old_field staged as zzz_deleted_old_field, got %+v", out.RenamedColumns)
	}
	if out.RemovedColumns["old_field"] != nil {
		t.Errorf("staged column must leave RemovedColumns")
	}
	// Already staged column proceeds as a real drop candidate
	if out.RemovedColumns["zzz_deleted_gone"] == nil {
		t.Errorf("prefixed column must remain a drop candidate, got %+v", out.RemovedColumns)
	}
	if out.RenamedColumns["zzz_deleted_gone"] != nil {
		t.Errorf("prefixed column must not be re-staged")
	}
}

func TestFilterForConnectionScopesToMappedTables(t *testing.T) {
	router := &stubRouter{
		mapping:     map[string]string{"onlyTable": "extra"},
		defaultName: "default",
	}

	diff := NewSchemaDiff("extra", schemaOf(t))
	diff.NewTables["onlyTable"] = &schema.Table{Name: "onlyTable"}
	diff.RemovedTables["otherTable"] = &schema.Table{Name: "otherTable"}
	diff.ChangedTables["otherChanged"] = NewTableDiff(&schema.Table{Name: "otherChanged"}, nil)

	result := FilterForConnection(diff, router, "extra")

	if result.NewTables["onlyTable"] == nil {
		t.Errorf("mapped table must survive the filter")
	}
	if len(result.RemovedTables) != 0 || len(result.ChangedTables) != 0 {
		t.Errorf("foreign tables must be filtered out, got %+v", result)
	}
}

func TestFilterForConnectionWithoutMappingIsEmpty(t *testing.T) {
	router := &stubRouter{defaultName: "default"}

	diff := NewSchemaDiff("extra", schemaOf(t))
	diff.NewTables["anything"] = &schema.Table{Name: "anything"}

	result := FilterForConnection(diff, router, "extra")

	if !result.IsEmpty() {
		t.Errorf("connection without mapping config owns nothing, got %+v", result)
	}
}

func TestFilterForConnectionKeepsStagedTablesVisible(t *testing.T) {
	router := &stubRouter{
		mapping:     map[string]string{"onlyTable": "extra"},
		defaultName: "default",
	}

	diff := NewSchemaDiff("extra", schemaOf(t))
	diff.RemovedTables["zzz_deleted_onlyTable"] = &schema.Table{Name: "zzz_deleted_onlyTable"}

	result := FilterForConnection(diff, router, "extra")

	if result.RemovedTables["zzz_deleted_onlyTable"] == nil {
		t.Errorf("staged table must stay visible to its connection after prefix stripping")
	}
}

func TestFilterForConnectionDefaultKeepsAll(t *testing.T) {
	router := &stubRouter{
		mapping:     map[string]string{"onlyTable": "extra"},
		defaultName: "default",
	}

	diff := NewSchemaDiff("default", schemaOf(t))
	diff.NewTables["pages"] = &schema.Table{Name: "pages"}
	diff.NewTables["onlyTable"] = &schema.Table{Name: "onlyTable"}

	result := FilterForConnection(diff, router, "default")

	if len(result.NewTables) != 2 {
		t.Errorf("default connection keeps its full diff, got %+v", result.NewTables)
	}
}
