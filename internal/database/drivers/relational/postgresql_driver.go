package relational

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"nexus-migrator/internal/database/drivers"
	"nexus-migrator/internal/model"
)

// PostgreSQLDriver implements Driver for PostgreSQL
type PostgreSQLDriver struct{}

func (d *PostgreSQLDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

func (d *PostgreSQLDriver) ValidateDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	return nil
}

func (d *PostgreSQLDriver) GetDefaultPort() int {
	return 5432
}

func (d *PostgreSQLDriver) BuildDSN(config *model.ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = d.GetDefaultPort()
	}
	sslMode := "disable"
	if config.SSL {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host,
		port,
		config.Username,
		config.Password,
		config.Database,
		sslMode,
	)
}

func (d *PostgreSQLDriver) GetDatabaseTypeName() string {
	return "postgresql"
}

func (d *PostgreSQLDriver) GetCapabilities() drivers.Capabilities {
	return drivers.Capabilities{
		SupportsSQL:                 true,
		SupportsTransactions:        true,
		SupportsSchemaIntrospection: true,
		SupportsTableOptions:        false,
		SupportsForeignKeys:         true,
	}
}
