package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	return loader
}

func TestParseSQLCreateTable(t *testing.T) {
	loader := newTestLoader(t)

	tables, err := loader.ParseSQL(`
		CREATE TABLE tx_ext_items (
			uid int(11) unsigned NOT NULL AUTO_INCREMENT,
			pid int(11) NOT NULL DEFAULT 0,
			title varchar(255) NOT NULL DEFAULT '',
			PRIMARY KEY (uid),
			KEY parent (pid)
		) ENGINE=InnoDB;
	`)
	if err != nil {
		t.Fatalf("ParseSQL failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	table := tables[0]
	if table.Name != "tx_ext_items" {
		t.Errorf("table name = %q", table.Name)
	}

	uid := table.Column("uid")
	if uid == nil {
		t.Fatal("uid column missing")
	}
	if uid.Type != "int" || uid.Length != 11 || !uid.Unsigned || !uid.NotNull || !uid.AutoIncrement {
		t.Errorf("uid parsed incorrectly: %+v", uid)
	}

	pid := table.Column("pid")
	if !pid.HasDefault || pid.Default != "0" {
		t.Errorf("pid default parsed incorrectly: %+v", pid)
	}

	primary := table.Index("PRIMARY")
	if primary == nil || !primary.Primary {
		t.Errorf("primary key index missing or not flagged: %+v", primary)
	}
	parent := table.Index("parent")
	if parent == nil || len(parent.Columns) != 1 || parent.Columns[0].Name != "pid" {
		t.Errorf("parent index parsed incorrectly: %+v", parent)
	}

	if table.Options.Engine != "InnoDB" {
		t.Errorf("engine option = %q", table.Options.Engine)
	}
}

func TestParseSQLSubstringIndex(t *testing.T) {
	loader := newTestLoader(t)

	tables, err := loader.ParseSQL(`
		CREATE TABLE tt_content (
			bodytext mediumtext,
			KEY search (bodytext(80))
		);
	`)
	if err != nil {
		t.Fatalf("ParseSQL failed: %v", err)
	}

	idx := tables[0].Index("search")
	if idx == nil || idx.Columns[0].Length != 80 {
		t.Errorf("substring index length not captured: %+v", idx)
	}
}

func TestParseSQLRejectsNonCreate(t *testing.T) {
	loader := newTestLoader(t)

	if _, err := loader.ParseSQL("INSERT INTO pages (uid) VALUES (1)"); err == nil {
		t.Error("expected DML in a declaration file to be rejected")
	}
}

func TestParseSQLMultipleStatements(t *testing.T) {
	loader := newTestLoader(t)

	tables, err := loader.ParseSQL(`
		CREATE TABLE a (uid int(11) NOT NULL);
		CREATE TABLE b (uid int(11) NOT NULL);
	`)
	if err != nil {
		t.Fatalf("ParseSQL failed: %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("expected 2 tables, got %d", len(tables))
	}
}

func TestLoadPathsReadsDirectory(t *testing.T) {
	dir := t.TempDir()

	sqlFile := filepath.Join(dir, "10_core.sql")
	if err := os.WriteFile(sqlFile, []byte("CREATE TABLE pages (uid int(11) NOT NULL);"), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlFile := filepath.Join(dir, "20_ext.yaml")
	yaml := `
tables:
  - name: pages
    columns:
      - name: title
        type: varchar
        length: 255
`
	if err := os.WriteFile(yamlFile, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := newTestLoader(t)
	tables, err := loader.LoadPaths([]string{dir})
	if err != nil {
		t.Fatalf("LoadPaths failed: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(tables))
	}

	// Lexical file order keeps last-write-wins predictable
	if tables[0].Column("uid") == nil || tables[1].Column("title") == nil {
		t.Errorf("declarations out of order: %q then %q", tables[0].Name, tables[1].Name)
	}

	merged := MergeTables(tables)
	if len(merged["pages"].Columns) != 2 {
		t.Errorf("merged pages should have 2 columns, got %d", len(merged["pages"].Columns))
	}
}
