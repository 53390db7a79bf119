package migrator

import (
	"context"
	"fmt"

	"nexus-migrator/internal/database"
	"nexus-migrator/internal/database/introspect"
	"nexus-migrator/internal/platform"
	"nexus-migrator/internal/schema"
)

// ConnectionMigrator diffs the expected schema of one connection against its
// live schema and either suggests or applies the reconciling SQL.
type ConnectionMigrator struct {
	connectionName string
	registry       *database.Registry
	conn           *database.Connection
	expected       *schema.Schema
	differ         *Differ
	builder        *Builder
	introspector   *introspect.Introspector
}

// NewConnectionMigrator builds a migrator for one connection. declarations
// is the full ordered list of partial table declarations; they are merged,
// normalized for the connection's platform and filtered to the tables the
// connection is responsible for.
func NewConnectionMigrator(registry *database.Registry, connectionName string, declarations []*schema.Table) (*ConnectionMigrator, error) {
	conn, err := registry.ByName(connectionName)
	if err != nil {
		return nil, err
	}

	merged := schema.MergeTables(declarations)
	var owned []*schema.Table
	for name, table := range merged {
		if registry.ConnectionFor(name) != connectionName {
			continue
		}
		owned = append(owned, table)
	}

	expected := schema.NewSchema(conn.Config.Database)
	for _, table := range platform.NormalizeTables(conn.Family, owned) {
		expected.AddTable(table)
	}

	return &ConnectionMigrator{
		connectionName: connectionName,
		registry:       registry,
		conn:           conn,
		expected:       expected,
		differ:         NewDiffer(conn.Family),
		builder:        NewBuilder(conn.Family),
		introspector:   introspect.NewIntrospector(conn),
	}, nil
}

// ConnectionName returns the connection this migrator operates on.
func (m *ConnectionMigrator) ConnectionName() string {
	return m.connectionName
}

// buildDiff reads the live schema and runs the transformation pipeline.
func (m *ConnectionMigrator) buildDiff(ctx context.Context, mitigate bool) (*SchemaDiff, error) {
	live, err := m.introspector.ReadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read live schema of %s: %w", m.connectionName, err)
	}

	diff := m.differ.Diff(m.connectionName, live, m.expected)
	diff = UnrenameColumns(diff)
	if mitigate {
		diff = StageTableRemovals(m.conn.Family, diff)
		diff = StageColumnRemovals(m.conn.Family, diff)
	}
	diff = FilterForConnection(diff, m.registry, m.connectionName)

	return diff, nil
}

// GetSchemaDiff returns the raw, unmitigated diff for the connection.
func (m *ConnectionMigrator) GetSchemaDiff(ctx context.Context) (*SchemaDiff, error) {
	return m.buildDiff(ctx, false)
}

// GetUpdateSuggestions returns the hash addressed statement suggestions.
// With remove unset only additive and change statements are produced; with
// remove set the staged renames and eligible drops are produced instead.
func (m *ConnectionMigrator) GetUpdateSuggestions(ctx context.Context, remove bool) (*UpdateSuggestions, error) {
	diff, err := m.buildDiff(ctx, true)
	if err != nil {
		return nil, err
	}

	extractor := NewExtractor(m.builder, m.introspector)
	return extractor.Extract(ctx, diff, remove), nil
}

// Install applies the additive subset of the diff and reports the outcome
// per statement. With createOnly set only table creation and new additions
// are applied.
func (m *ConnectionMigrator) Install(ctx context.Context, createOnly bool) (map[string]string, error) {
	diff, err := m.buildDiff(ctx, false)
	if err != nil {
		return nil, err
	}
	diff = StripRemovals(diff)

	installer := NewInstaller(m.builder, m.conn.DB)
	statements := installer.Plan(diff, createOnly)
	return installer.Apply(ctx, statements), nil
}

// Service fans migration operations out over every configured connection.
type Service struct {
	registry     *database.Registry
	declarations []*schema.Table
}

// NewService creates the migration service from the connection registry and
// the loaded table declarations.
func NewService(registry *database.Registry, declarations []*schema.Table) *Service {
	return &Service{registry: registry, declarations: declarations}
}

// ConnectionNames returns the names of all registered connections.
func (s *Service) ConnectionNames() []string {
	return s.registry.Names()
}

// TableMapping returns the configured table to connection routing.
func (s *Service) TableMapping() map[string]string {
	return s.registry.TableMapping()
}

// Migrator returns the migrator for one connection.
func (s *Service) Migrator(connectionName string) (*ConnectionMigrator, error) {
	return NewConnectionMigrator(s.registry, connectionName, s.declarations)
}

// InstallAll runs Install on every connection and keys the per statement
// results by connection name.
func (s *Service) InstallAll(ctx context.Context, createOnly bool) (map[string]map[string]string, error) {
	results := make(map[string]map[string]string)
	for _, name := range s.registry.Names() {
		m, err := s.Migrator(name)
		if err != nil {
			return nil, err
		}
		result, err := m.Install(ctx, createOnly)
		if err != nil {
			return nil, err
		}
		results[name] = result
	}
	return results, nil
}
