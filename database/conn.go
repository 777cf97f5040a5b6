/*
 * Copyright 2025 toolkitcore.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

var (
	globalManager Manager
	globalConfig  *Config

	// DB is the global Bun instance established by InitDB.
	DB *bun.DB
)

var supportedTypes = []string{"mysql", "postgres", "postgresql", "sqlite", "sqlite3"}

// InitDB connects the global database, registers the known models, and runs
// the configured bootstrap steps. Call once at startup.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	supported := false
	for _, t := range supportedTypes {
		if cfg.Connection.Type == t {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Connection.Type, supportedTypes)
	}
	OverrideFromEnv(&cfg.Connection)

	manager := NewManager(cfg)
	ctx := context.Background()
	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	globalManager = manager
	globalConfig = cfg
	DB = manager.DB()
	DB.RegisterModel(RegisteredModelInstances()...)

	bs := cfg.Bootstrap
	if bs.CreateTablesOnStartup || bs.EnableForeignKeys || bs.SeedDir != "" {
		if err := manager.Bootstrap(ctx); err != nil {
			return nil, fmt.Errorf("failed to bootstrap database: %w", err)
		}
	}
	return DB, nil
}

// GetDB returns the global Bun database instance.
func GetDB() *bun.DB {
	if globalManager != nil {
		return globalManager.DB()
	}
	return DB
}

// GetManager returns the global database manager.
func GetManager() Manager {
	return globalManager
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalManager == nil {
		return nil
	}
	err := globalManager.Disconnect()
	globalManager = nil
	globalConfig = nil
	DB = nil
	return err
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalManager != nil {
		return globalManager.HealthCheck(ctx)
	}
	return &HealthStatus{LastError: "database not initialized"}
}

// GetDatabaseStats returns global connection pool statistics.
func GetDatabaseStats() *DBStats {
	if globalManager != nil {
		return globalManager.Stats()
	}
	return &DBStats{}
}

// BootstrapDatabase re-runs the configured bootstrap steps on the global
// connection.
func BootstrapDatabase(ctx context.Context) error {
	if globalManager == nil {
		return fmt.Errorf("database not initialized")
	}
	return globalManager.Bootstrap(ctx)
}

// SeedFromDir executes the .sql files under dir against the global
// connection, inside one transaction.
func SeedFromDir(ctx context.Context, dir string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	cfg := BootstrapConfig{SeedDir: dir}
	return newBootstrapper(db, &cfg, GetLogger()).seedFromDir(ctx, dir)
}
