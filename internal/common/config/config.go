// internal/common/config/config.go
package config

import (
	"fmt"
	"net/url"
)

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Channel     ChannelConfig     `mapstructure:"channel"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Stub        StubConfig        `mapstructure:"stub"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ChannelConfig describes the duplex channel to the backend.
// All timeouts are in milliseconds, like the rest of the file.
type ChannelConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Protocol         string `mapstructure:"protocol"` // "ws" or "wss"
	URL              string `mapstructure:"url"`      // overrides host/port/protocol when set
	RequestTimeout   int    `mapstructure:"request_timeout"`
	HandshakeTimeout int    `mapstructure:"handshake_timeout"`
	WriteTimeout     int    `mapstructure:"write_timeout"`
	PingInterval     int    `mapstructure:"ping_interval"`
	MaxMessageBytes  int64  `mapstructure:"max_message_bytes"`
}

// GetURL returns the channel URL, built from host/port/protocol when url is empty.
func (c ChannelConfig) GetURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: c.Protocol,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/",
	}
	return u.String()
}

// CredentialsConfig is the opaque username/secret pair attached to every request.
type CredentialsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig enables the Redis-backed result cache.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // milliseconds
	Prefix   string `mapstructure:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the Prometheus endpoint. Empty Listen disables it.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// TracingConfig controls span sampling. Finished spans go to the debug log.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// StubConfig configures the in-memory development backend.
type StubConfig struct {
	Listen   string `mapstructure:"listen"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Timezone string `mapstructure:"timezone"`
}
