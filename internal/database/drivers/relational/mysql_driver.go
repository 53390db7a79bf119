package relational

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"nexus-migrator/internal/database/drivers"
	"nexus-migrator/internal/model"
)

// MySQLDriver implements Driver for MySQL/MariaDB
type MySQLDriver struct{}

func (d *MySQLDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}

func (d *MySQLDriver) ValidateDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	return nil
}

func (d *MySQLDriver) GetDefaultPort() int {
	return 3306
}

func (d *MySQLDriver) BuildDSN(config *model.ConnectionConfig) string {
	port := config.Port
	if port == 0 {
		port = d.GetDefaultPort()
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		config.Username,
		config.Password,
		config.Host,
		port,
		config.Database,
	)

	params := []string{}
	if config.SSL {
		params = append(params, "tls=true")
	}
	if config.Timezone != "" {
		params = append(params, "loc="+config.Timezone)
	}

	if len(params) > 0 {
		dsn += "?" + strings.Join(params, "&")
	}

	return dsn
}

func (d *MySQLDriver) GetDatabaseTypeName() string {
	return "mysql"
}

func (d *MySQLDriver) GetCapabilities() drivers.Capabilities {
	return drivers.Capabilities{
		SupportsSQL:                 true,
		SupportsTransactions:        true,
		SupportsSchemaIntrospection: true,
		SupportsTableOptions:        true,
		SupportsForeignKeys:         true,
	}
}
