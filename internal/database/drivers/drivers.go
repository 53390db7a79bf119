package drivers

import (
	"database/sql"

	"nexus-migrator/internal/model"
)

// Capabilities defines what schema operations a driver's platform supports.
type Capabilities struct {
	SupportsSQL                 bool
	SupportsTransactions        bool
	SupportsSchemaIntrospection bool
	SupportsTableOptions        bool
	SupportsForeignKeys         bool
}

// Driver defines database-specific connection handling.
type Driver interface {
	// Open opens a database connection.
	Open(dsn string) (*sql.DB, error)

	// BuildDSN builds a connection string from configuration.
	BuildDSN(config *model.ConnectionConfig) string

	// ValidateDSN validates the connection string.
	ValidateDSN(dsn string) error

	// GetDefaultPort returns the default port for the database.
	GetDefaultPort() int

	// GetDatabaseTypeName returns the database type name.
	GetDatabaseTypeName() string

	// GetCapabilities returns the schema capabilities of the platform.
	GetCapabilities() Capabilities
}
