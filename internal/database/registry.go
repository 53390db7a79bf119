package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"nexus-migrator/internal/model"
	"nexus-migrator/internal/platform"
)

// Connection is one opened logical database target.
type Connection struct {
	Name   string
	Type   model.DatabaseType
	Family platform.Family
	Config model.ConnectionConfig
	DB     *sql.DB
}

// Registry holds the configured connections, the default connection name and
// the table-to-connection mapping. It is constructed from injected
// configuration; nothing here reads ambient state.
type Registry struct {
	connections  map[string]*Connection
	defaultName  string
	tableMapping map[string]string
	drivers      *DriverRegistry
	mutex        sync.RWMutex
}

// NewRegistry creates an empty registry for the given default connection name
// and table mapping.
func NewRegistry(defaultName string, tableMapping map[string]string) *Registry {
	if tableMapping == nil {
		tableMapping = make(map[string]string)
	}
	return &Registry{
		connections:  make(map[string]*Connection),
		defaultName:  defaultName,
		tableMapping: tableMapping,
		drivers:      NewDriverRegistry(),
	}
}

// Open opens a configured connection and registers it under the given name.
func (r *Registry) Open(ctx context.Context, name string, config model.ConnectionConfig) error {
	driver, err := r.drivers.GetDriver(config.Type)
	if err != nil {
		return err
	}

	dsn := driver.BuildDSN(&config)
	if err := driver.ValidateDSN(dsn); err != nil {
		return fmt.Errorf("invalid DSN for connection %s: %w", name, err)
	}

	db, err := driver.Open(dsn)
	if err != nil {
		return fmt.Errorf("failed to open connection %s: %w", name, err)
	}

	configureConnectionPool(db, &config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping connection %s: %w", name, err)
	}

	r.Add(&Connection{
		Name:   name,
		Type:   config.Type,
		Family: platform.ResolveType(config.Type),
		Config: config,
		DB:     db,
	})

	return nil
}

// Add registers an already-constructed connection, replacing any previous
// connection of the same name.
func (r *Registry) Add(conn *Connection) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.connections[conn.Name] = conn
}

// configureConnectionPool applies pool settings from configuration.
func configureConnectionPool(db *sql.DB, config *model.ConnectionConfig) {
	maxOpenConns := config.MaxPoolSize
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	db.SetMaxOpenConns(maxOpenConns)

	maxIdleConns := maxOpenConns / 2
	if maxIdleConns < 2 {
		maxIdleConns = 2
	}
	db.SetMaxIdleConns(maxIdleConns)

	maxLifetime := time.Duration(config.MaxLifetime) * time.Second
	if maxLifetime <= 0 {
		maxLifetime = 30 * time.Minute
	}
	db.SetConnMaxLifetime(maxLifetime)
}

// ByName returns the named connection.
func (r *Registry) ByName(name string) (*Connection, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	conn, exists := r.connections[name]
	if !exists {
		return nil, fmt.Errorf("connection not found: %s", name)
	}
	return conn, nil
}

// DefaultName returns the name of the default connection.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Names returns all registered connection names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.connections))
	for name := range r.connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConnectionFor routes a table name to the connection responsible for it. A
// table without a mapping, or mapped to a connection that is not registered,
// belongs to the default connection. Malformed mapping entries are never a
// hard failure.
func (r *Registry) ConnectionFor(tableName string) string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	mapped, ok := r.tableMapping[tableName]
	if !ok || mapped == "" {
		return r.defaultName
	}
	if _, exists := r.connections[mapped]; !exists {
		return r.defaultName
	}
	return mapped
}

// HasMapping reports whether any table mapping configuration exists at all.
func (r *Registry) HasMapping() bool {
	return len(r.tableMapping) > 0
}

// TableMapping returns a copy of the full table-to-connection mapping.
func (r *Registry) TableMapping() map[string]string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	mapping := make(map[string]string, len(r.tableMapping))
	for table, conn := range r.tableMapping {
		mapping[table] = conn
	}
	return mapping
}

// HealthCheck pings every registered connection.
func (r *Registry) HealthCheck(ctx context.Context) map[string]bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	results := make(map[string]bool)
	for name, conn := range r.connections {
		results[name] = conn.DB.PingContext(ctx) == nil
	}
	return results
}

// CloseAll closes all registered connections.
func (r *Registry) CloseAll() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var lastErr error
	for name, conn := range r.connections {
		if conn.DB != nil {
			if err := conn.DB.Close(); err != nil {
				lastErr = err
			}
		}
		delete(r.connections, name)
	}
	return lastErr
}
