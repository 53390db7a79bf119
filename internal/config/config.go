package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"nexus-migrator/internal/model"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Connections maps logical connection names to their targets. The
	// connection named by DefaultConnection owns every table without an
	// explicit TableMapping entry.
	Connections       map[string]model.ConnectionConfig `mapstructure:"connections"`
	DefaultConnection string                            `mapstructure:"default_connection"`
	TableMapping      map[string]string                 `mapstructure:"table_mapping"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	Host string `mapstructure:"host"`
}

// SchemaConfig locates the declared table definitions.
type SchemaConfig struct {
	// Paths are files or directories of .sql / .yaml declaration files,
	// read in order; later declarations override earlier ones.
	Paths []string `mapstructure:"paths"`
}

type SecurityConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTExpiration      time.Duration `mapstructure:"jwt_expiration"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
	EnableAuth         bool          `mapstructure:"enable_auth"`
	EnableRateLimit    bool          `mapstructure:"enable_rate_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults and environment
			fmt.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the connection block for consistency. A table mapped to an
// unknown connection is not an error; the router falls back to the default
// connection for it.
func (c *Config) Validate() error {
	if len(c.Connections) == 0 {
		return fmt.Errorf("no connections configured")
	}
	if _, ok := c.Connections[c.DefaultConnection]; !ok {
		return fmt.Errorf("default connection %q is not configured", c.DefaultConnection)
	}
	validate := validator.New()
	for name, conn := range c.Connections {
		if !model.IsValidDatabaseType(string(conn.Type)) {
			return fmt.Errorf("connection %q has unsupported database type %q", name, conn.Type)
		}
		if err := validate.Struct(&conn); err != nil {
			return fmt.Errorf("connection %q: %w", name, err)
		}
	}
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.host", "0.0.0.0")

	// Schema defaults
	viper.SetDefault("schema.paths", []string{"./schemas"})

	// Connection defaults
	viper.SetDefault("default_connection", "default")

	// Security defaults
	viper.SetDefault("security.jwt_secret", "your-secret-key")
	viper.SetDefault("security.jwt_expiration", "24h")
	viper.SetDefault("security.rate_limit_per_minute", 60)
	viper.SetDefault("security.rate_limit_burst", 10)
	viper.SetDefault("security.enable_auth", true)
	viper.SetDefault("security.enable_rate_limit", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
