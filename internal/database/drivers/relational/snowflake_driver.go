package relational

import (
	"database/sql"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake"

	"nexus-migrator/internal/database/drivers"
	"nexus-migrator/internal/model"
)

// SnowflakeDriver implements Driver for Snowflake
type SnowflakeDriver struct{}

func (d *SnowflakeDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("snowflake", dsn)
}

func (d *SnowflakeDriver) ValidateDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	return nil
}

func (d *SnowflakeDriver) GetDefaultPort() int {
	return 443
}

func (d *SnowflakeDriver) BuildDSN(config *model.ConnectionConfig) string {
	dsn := fmt.Sprintf("%s:%s@%s/%s",
		config.Username,
		config.Password,
		config.Account,
		config.Database,
	)
	if config.Warehouse != "" {
		dsn += "?warehouse=" + config.Warehouse
	}
	return dsn
}

func (d *SnowflakeDriver) GetDatabaseTypeName() string {
	return "snowflake"
}

func (d *SnowflakeDriver) GetCapabilities() drivers.Capabilities {
	return drivers.Capabilities{
		SupportsSQL:                 true,
		SupportsTransactions:        true,
		SupportsSchemaIntrospection: true,
		SupportsTableOptions:        false,
		SupportsForeignKeys:         false,
	}
}
