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
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Manager owns a database connection: dialect setup, pooling, health
// checks, and startup bootstrap.
type Manager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	Bootstrap(ctx context.Context) error
	DB() *bun.DB
	SQLDB() *sql.DB
	Stats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql pool statistics.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

type manager struct {
	config          *Config
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	memoryDB        bool
	lastError       error
	reconnectTries  int
	stopHealthCheck chan struct{}
	stopOnce        sync.Once
	healthLoopOnce  sync.Once
}

// NewManager returns a Manager for the given config. A nil config falls
// back to defaults.
func NewManager(cfg *Config) Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &manager{
		config:          cfg,
		logger:          GetLogger(),
		stopHealthCheck: make(chan struct{}),
	}
}

func (m *manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected && m.db != nil {
		return nil
	}

	var err error
	m.sqlDB, m.db, err = m.openConnection()
	if err != nil {
		m.lastError = err
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	m.configurePool()

	conn := &m.config.Connection
	ctxTimeout, cancel := context.WithTimeout(ctx, conn.ConnectTimeout)
	defer cancel()
	if err := m.db.PingContext(ctxTimeout); err != nil {
		m.lastError = err
		return fmt.Errorf("database connection test failed: %w", err)
	}

	m.connected = true
	m.lastError = nil
	m.reconnectTries = 0

	if conn.HealthCheckInterval > 0 {
		m.startHealthLoop()
	}
	if m.logger != nil {
		m.logger.Info("Database connected", "type", conn.Type, "dbname", conn.DBName)
	}
	return nil
}

func (m *manager) openConnection() (*sql.DB, *bun.DB, error) {
	conn := &m.config.Connection
	if conn.ConnectTimeout <= 0 {
		conn.ConnectTimeout = 30 * time.Second
	}

	var sqlDB *sql.DB
	var db *bun.DB
	var err error
	switch conn.Type {
	case "mysql":
		sqlDB, db, err = m.openMySQL()
	case "postgres", "postgresql":
		sqlDB, db, err = m.openPostgreSQL()
	case "sqlite", "sqlite3":
		sqlDB, db, err = m.openSQLite()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", conn.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	db.AddQueryHook(bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG")))
	if conn.EnableQueryLog {
		db.AddQueryHook(newQueryLogHook(true))
	}
	if conn.SlowQueryTime > 0 {
		db.AddQueryHook(newSlowQueryHook(conn.SlowQueryTime, m.logger))
	}
	return sqlDB, db, nil
}

func (m *manager) openMySQL() (*sql.DB, *bun.DB, error) {
	conn := &m.config.Connection
	charset := conn.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		conn.Username, conn.Password, conn.Host, conn.Port, conn.DBName,
		charset, conn.ConnectTimeout, conn.ReadTimeout, conn.WriteTimeout,
	)
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, mysqldialect.New()), nil
}

func (m *manager) openPostgreSQL() (*sql.DB, *bun.DB, error) {
	conn := &m.config.Connection
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		conn.Username, conn.Password, conn.Host, conn.Port, conn.DBName,
		sslMode, int(conn.ConnectTimeout.Seconds()),
	)
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, pgdialect.New()), nil
}

func (m *manager) openSQLite() (*sql.DB, *bun.DB, error) {
	conn := &m.config.Connection
	name := conn.DBName
	var dsn string
	switch {
	case name == "" || name == ":memory:":
		dsn = "file::memory:?cache=shared"
		m.memoryDB = true
	case strings.HasPrefix(name, "file:"):
		dsn = name
		m.memoryDB = strings.Contains(name, ":memory:") || strings.Contains(name, "mode=memory")
	default:
		dsn = name + ".db"
	}
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func (m *manager) configurePool() {
	if m.sqlDB == nil {
		return
	}
	conn := &m.config.Connection
	if m.memoryDB {
		// More than one pooled connection to :memory: would each see a
		// private empty database.
		m.sqlDB.SetMaxOpenConns(1)
		m.sqlDB.SetMaxIdleConns(1)
		m.sqlDB.SetConnMaxLifetime(0)
		m.sqlDB.SetConnMaxIdleTime(0)
		return
	}
	m.sqlDB.SetMaxIdleConns(conn.MaxIdleConns)
	m.sqlDB.SetMaxOpenConns(conn.MaxOpenConns)
	m.sqlDB.SetConnMaxLifetime(conn.ConnMaxLifetime)
	m.sqlDB.SetConnMaxIdleTime(conn.ConnMaxIdleTime)
}

// Disconnect closes the connection and stops the health loop.
func (m *manager) Disconnect() error {
	m.stopOnce.Do(func() { close(m.stopHealthCheck) })
	return m.closeConnection()
}

func (m *manager) closeConnection() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	m.sqlDB = nil
	m.connected = false
	if m.logger != nil {
		if err != nil {
			m.logger.Error("Failed to close database connection", "error", err)
		} else {
			m.logger.Info("Database connection closed")
		}
	}
	return err
}

// Reconnect drops the current connection and dials again. The health loop
// keeps running across reconnects.
func (m *manager) Reconnect(ctx context.Context) error {
	if m.logger != nil {
		m.logger.Info("Reconnecting to the database")
	}
	if err := m.closeConnection(); err != nil {
		if m.logger != nil {
			m.logger.Warn("Error closing connection before reconnect", "error", err)
		}
	}
	return m.Connect(ctx)
}

func (m *manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	db := m.db
	m.mu.RUnlock()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (m *manager) HealthCheck(ctx context.Context) *HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     m.connected,
	}
	if m.db == nil {
		status.LastError = "database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	err := m.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.Connected = false
		status.LastError = err.Error()
		m.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		m.lastError = nil
	}

	if m.sqlDB != nil {
		stats := m.sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}
	return status
}

func (m *manager) startHealthLoop() {
	m.healthLoopOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(m.config.Connection.HealthCheckInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
					status := m.HealthCheck(ctx)
					cancel()
					if !status.Healthy && m.config.Connection.EnableReconnect {
						m.handleReconnect()
					}
				case <-m.stopHealthCheck:
					return
				}
			}
		}()
	})
}

func (m *manager) handleReconnect() {
	conn := &m.config.Connection
	if m.reconnectTries >= conn.MaxReconnectTries {
		if m.logger != nil {
			m.logger.Error("Max reconnect attempts reached", "tries", m.reconnectTries)
		}
		return
	}
	m.reconnectTries++
	if m.logger != nil {
		m.logger.Info("Attempting database reconnect", "try", m.reconnectTries)
	}
	time.Sleep(conn.ReconnectInterval)

	ctx, cancel := context.WithTimeout(context.Background(), conn.ConnectTimeout)
	defer cancel()
	if err := m.Reconnect(ctx); err != nil {
		if m.logger != nil {
			m.logger.Error("Reconnect failed", "error", err, "try", m.reconnectTries)
		}
		return
	}
	m.reconnectTries = 0
	if m.logger != nil {
		m.logger.Info("Reconnect succeeded")
	}
}

func (m *manager) DB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *manager) SQLDB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sqlDB
}

func (m *manager) Stats() *DBStats {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()
	if sqlDB == nil {
		return &DBStats{}
	}
	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (m *manager) Bootstrap(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return newBootstrapper(db, &m.config.Bootstrap, m.logger).Run(ctx)
}

func (m *manager) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}
