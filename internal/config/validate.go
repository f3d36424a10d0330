package config

import (
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/leadscan/internal/database"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePort checks if a port number is valid.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateLogLevel checks if a log level is valid.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateLogFormat checks if a log format is valid.
func ValidateLogFormat(format string) error {
	switch format {
	case logger.FormatJSON, logger.FormatConsole:
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}

func validateServerMode(mode string) error {
	switch mode {
	case "debug", "release", "test":
		return nil
	default:
		return &ValidationError{Field: "server.mode", Message: "must be one of: debug, release, test"}
	}
}

func validateDatabase(c database.Config) error {
	switch c.Driver {
	case database.DriverMemory:
		return nil
	case database.DriverPostgres:
		if c.Host == "" {
			return &ValidationError{Field: "database.host", Message: "is required"}
		}
		return nil
	default:
		return &ValidationError{Field: "database.driver", Message: "must be one of: memory, postgres"}
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	errs := []error{
		ValidatePort("server.port", c.Server.Port),
		validateServerMode(c.Server.Mode),
		ValidateLogLevel(c.Logging.Level),
		ValidateLogFormat(c.Logging.Format),
		validateDatabase(c.Database),
	}
	if err := c.Crawler.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("crawler: %w", err))
	}
	if err := c.Scanner.Pool.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scanner.pool: %w", err))
	}
	return errors.Join(errs...)
}
