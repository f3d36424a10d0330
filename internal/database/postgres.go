// Package database implements storage.Store on PostgreSQL.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

// Drivers accepted by Config.Driver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config holds database configuration.
type Config struct {
	Driver   string `env:"DATABASE_DRIVER"   yaml:"driver"`
	Host     string `env:"DATABASE_HOST"     yaml:"host"`
	Port     string `env:"DATABASE_PORT"     yaml:"port"`
	User     string `env:"DATABASE_USER"     yaml:"user"`
	Password string `env:"DATABASE_PASSWORD" yaml:"password"`
	DBName   string `env:"DATABASE_NAME"     yaml:"dbname"`
	SSLMode  string `env:"DATABASE_SSLMODE"  yaml:"sslmode"`
	// MigrateOnStart applies pending migrations when the store opens.
	MigrateOnStart bool `env:"DATABASE_MIGRATE_ON_START" yaml:"migrate_on_start"`
}

// WithDefaults returns a copy of the config with zero-value fields filled in.
func (c Config) WithDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.User == "" {
		c.User = "postgres"
	}
	if c.DBName == "" {
		c.DBName = "leadscan"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	return c
}

// DSN renders the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// NewPostgresConnection creates a new PostgreSQL database connection.
func NewPostgresConnection(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}
