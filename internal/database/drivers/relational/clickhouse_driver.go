package relational

import (
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"nexus-migrator/internal/database/drivers"
	"nexus-migrator/internal/model"
)

// ClickHouseDriver implements Driver for ClickHouse
type ClickHouseDriver struct{}

func (d *ClickHouseDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("clickhouse", dsn)
}

func (d *ClickHouseDriver) ValidateDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	return nil
}

func (d *ClickHouseDriver) GetDefaultPort() int {
	return 9000
}

func (d *ClickHouseDriver) BuildDSN(config *model.ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = d.GetDefaultPort()
	}
	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
		config.Username,
		config.Password,
		config.Host,
		port,
		config.Database,
	)
	if config.SSL {
		dsn += "?secure=true"
	}
	return dsn
}

func (d *ClickHouseDriver) GetDatabaseTypeName() string {
	return "clickhouse"
}

func (d *ClickHouseDriver) GetCapabilities() drivers.Capabilities {
	return drivers.Capabilities{
		SupportsSQL:                 true,
		SupportsTransactions:        false,
		SupportsSchemaIntrospection: true,
		SupportsTableOptions:        false,
		SupportsForeignKeys:         false,
	}
}
