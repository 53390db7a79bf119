package database

import (
	"fmt"
	"sync"

	"nexus-migrator/internal/database/drivers"
	"nexus-migrator/internal/database/drivers/relational"
	"nexus-migrator/internal/model"
)

// DriverRegistry manages driver instances and creation
type DriverRegistry struct {
	drivers map[model.DatabaseType]func() drivers.Driver
	mutex   sync.RWMutex
}

// NewDriverRegistry creates a new driver registry
func NewDriverRegistry() *DriverRegistry {
	registry := &DriverRegistry{
		drivers: make(map[model.DatabaseType]func() drivers.Driver),
	}

	registry.registerDrivers()

	return registry
}

// registerDrivers registers all available drivers
func (dr *DriverRegistry) registerDrivers() {
	dr.mutex.Lock()
	defer dr.mutex.Unlock()

	dr.register(model.DatabaseTypeMySQL, func() drivers.Driver {
		return &relational.MySQLDriver{}
	})
	dr.register(model.DatabaseTypeMariaDB, func() drivers.Driver {
		return &relational.MySQLDriver{}
	})
	dr.register(model.DatabaseTypePostgreSQL, func() drivers.Driver {
		return &relational.PostgreSQLDriver{}
	})
	dr.register(model.DatabaseTypeOracle, func() drivers.Driver {
		return &relational.OracleDriver{}
	})
	dr.register(model.DatabaseTypeSnowflake, func() drivers.Driver {
		return &relational.SnowflakeDriver{}
	})
	dr.register(model.DatabaseTypeClickHouse, func() drivers.Driver {
		return &relational.ClickHouseDriver{}
	})
}

// register registers a driver factory function
func (dr *DriverRegistry) register(dbType model.DatabaseType, factory func() drivers.Driver) {
	dr.drivers[dbType] = factory
}

// GetDriver creates or retrieves a driver for the specified database type
func (dr *DriverRegistry) GetDriver(dbType model.DatabaseType) (drivers.Driver, error) {
	dr.mutex.RLock()
	factory, exists := dr.drivers[dbType]
	dr.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	return factory(), nil
}

// ListDrivers returns all supported database types
func (dr *DriverRegistry) ListDrivers() []model.DatabaseType {
	dr.mutex.RLock()
	defer dr.mutex.RUnlock()

	types := make([]model.DatabaseType, 0, len(dr.drivers))
	for dbType := range dr.drivers {
		types = append(types, dbType)
	}

	return types
}

// IsSupported checks if a database type is supported
func (dr *DriverRegistry) IsSupported(dbType model.DatabaseType) bool {
	dr.mutex.RLock()
	_, exists := dr.drivers[dbType]
	dr.mutex.RUnlock()

	return exists
}
