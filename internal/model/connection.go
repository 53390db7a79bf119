package model

// DatabaseType identifies the platform of a configured connection.
type DatabaseType string

const (
	DatabaseTypeMySQL      DatabaseType = "mysql"
	DatabaseTypeMariaDB    DatabaseType = "mariadb"
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	DatabaseTypeOracle     DatabaseType = "oracle"
	DatabaseTypeSnowflake  DatabaseType = "snowflake"
	DatabaseTypeClickHouse DatabaseType = "clickhouse"
)

// ConnectionConfig holds the connection parameters for one logical database
// target. Connections are declared in configuration and injected; this
// subsystem never persists them.
type ConnectionConfig struct {
	Type     DatabaseType `mapstructure:"type" json:"type" validate:"required"`
	Host     string       `mapstructure:"host" json:"host" validate:"required"`
	Port     int          `mapstructure:"port" json:"port" validate:"min=0,max=65535"`
	Database string       `mapstructure:"database" json:"database" validate:"required"`
	Username string       `mapstructure:"username" json:"username"`
	Password string       `mapstructure:"password" json:"-"`
	SSL      bool         `mapstructure:"ssl" json:"ssl"`
	Timezone string       `mapstructure:"timezone" json:"timezone,omitempty"`

	// Pool settings, zero means driver default.
	MaxPoolSize int `mapstructure:"max_pool_size" json:"maxPoolSize,omitempty"`
	MaxLifetime int `mapstructure:"max_lifetime" json:"maxLifetime,omitempty"` // seconds
	Timeout     int `mapstructure:"timeout" json:"timeout,omitempty"`          // seconds

	// Snowflake and Oracle extras.
	Account   string `mapstructure:"account" json:"account,omitempty"`
	Warehouse string `mapstructure:"warehouse" json:"warehouse,omitempty"`
	Service   string `mapstructure:"service" json:"service,omitempty"`
}

// IsValidDatabaseType checks if a database type is supported.
func IsValidDatabaseType(dbType string) bool {
	switch DatabaseType(dbType) {
	case DatabaseTypeMySQL, DatabaseTypeMariaDB, DatabaseTypePostgreSQL,
		DatabaseTypeOracle, DatabaseTypeSnowflake, DatabaseTypeClickHouse:
		return true
	default:
		return false
	}
}
