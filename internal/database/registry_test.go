package database

import (
	"testing"

	"nexus-migrator/internal/model"
	"nexus-migrator/internal/platform"
)

func newTestRegistry(mapping map[string]string, connections ...string) *Registry {
	registry := NewRegistry("default", mapping)
	for _, name := range connections {
		registry.Add(&Connection{
			Name:   name,
			Type:   model.DatabaseTypeMySQL,
			Family: platform.FamilyMySQL,
		})
	}
	return registry
}

func TestConnectionForUnmappedTable(t *testing.T) {
	registry := newTestRegistry(map[string]string{"onlyTable": "extra"}, "default", "extra")

	if got := registry.ConnectionFor("pages"); got != "default" {
		t.Errorf("unmapped table should route to default, got %q", got)
	}
	if got := registry.ConnectionFor("onlyTable"); got != "extra" {
		t.Errorf("mapped table should route to its connection, got %q", got)
	}
}

func TestConnectionForMissingConnectionFallsBack(t *testing.T) {
	// onlyTable maps to a connection that was never opened
	registry := newTestRegistry(map[string]string{"onlyTable": "extra"}, "default")

	if got := registry.ConnectionFor("onlyTable"); got != "default" {
		t.Errorf("table mapped to a missing connection should fall back to default, got %q", got)
	}
}

func TestConnectionForEmptyMappingEntry(t *testing.T) {
	registry := newTestRegistry(map[string]string{"pages": ""}, "default")

	if got := registry.ConnectionFor("pages"); got != "default" {
		t.Errorf("malformed mapping entry should fall back to default, got %q", got)
	}
}

func TestTableMappingReturnsCopy(t *testing.T) {
	registry := newTestRegistry(map[string]string{"onlyTable": "extra"}, "default", "extra")

	mapping := registry.TableMapping()
	if mapping["onlyTable"] != "extra" {
		t.Fatalf("expected onlyTable mapped to extra, got %v", mapping)
	}

	mapping["onlyTable"] = "default"
	if got := registry.ConnectionFor("onlyTable"); got != "extra" {
		t.Errorf("mutating the returned mapping must not affect routing, got %q", got)
	}
}

func TestByNameUnknownConnection(t *testing.T) {
	registry := newTestRegistry(nil, "default")

	if _, err := registry.ByName("nope"); err == nil {
		t.Error("expected error for unknown connection")
	}
}

func TestDriverRegistryCoverage(t *testing.T) {
	registry := NewDriverRegistry()

	for _, dbType := range []model.DatabaseType{
		model.DatabaseTypeMySQL,
		model.DatabaseTypeMariaDB,
		model.DatabaseTypePostgreSQL,
		model.DatabaseTypeOracle,
		model.DatabaseTypeSnowflake,
		model.DatabaseTypeClickHouse,
	} {
		if !registry.IsSupported(dbType) {
			t.Errorf("driver for %s should be registered", dbType)
		}
	}
}
