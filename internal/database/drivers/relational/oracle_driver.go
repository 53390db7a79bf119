package relational

import (
	"database/sql"
	"fmt"

	_ "github.com/sijms/go-ora/v2"

	"nexus-migrator/internal/database/drivers"
	"nexus-migrator/internal/model"
)

// OracleDriver implements Driver for Oracle
type OracleDriver struct{}

func (d *OracleDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("oracle", dsn)
}

func (d *OracleDriver) ValidateDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	return nil
}

func (d *OracleDriver) GetDefaultPort() int {
	return 1521
}

func (d *OracleDriver) BuildDSN(config *model.ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = d.GetDefaultPort()
	}
	service := config.Service
	if service == "" {
		service = config.Database
	}
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		config.Username,
		config.Password,
		config.Host,
		port,
		service,
	)
}

func (d *OracleDriver) GetDatabaseTypeName() string {
	return "oracle"
}

func (d *OracleDriver) GetCapabilities() drivers.Capabilities {
	return drivers.Capabilities{
		SupportsSQL:                 true,
		SupportsTransactions:        true,
		SupportsSchemaIntrospection: true,
		SupportsTableOptions:        false,
		SupportsForeignKeys:         true,
	}
}
