package api

import (
	"net"
	"strconv"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	Host        string        `env:"SERVER_HOST"         yaml:"host"`
	Port        int           `env:"SERVER_PORT"         yaml:"port"`
	Mode        string        `env:"GIN_MODE"            yaml:"mode"`
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" yaml:"read_timeout"`
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" yaml:"idle_timeout"`
	// WriteTimeout stays zero by default: status streams are long-lived.
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `env:"SERVER_CORS_ORIGINS" yaml:"cors_origins"`
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SetDefaults applies default values for Config.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Mode == "" {
		c.Mode = "release"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}
