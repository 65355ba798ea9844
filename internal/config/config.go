package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	SweepInterval   time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	SessionTimeout  time.Duration `mapstructure:"session_timeout" yaml:"session_timeout"`
	DefaultMaxUsers int           `mapstructure:"default_max_users" yaml:"default_max_users"`
	ClientBuffer    int           `mapstructure:"client_buffer" yaml:"client_buffer"`
	MaxMessageBytes int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	// JournalPath enables the SQLite activity journal when set.
	JournalPath string   `mapstructure:"journal_path" yaml:"journal_path"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		SweepInterval:     5 * time.Minute,
		SessionTimeout:    5 * time.Minute,
		DefaultMaxUsers:   10,
		ClientBuffer:      64,
		MaxMessageBytes:   64 << 10,
		CORSOrigins:       []string{"*"},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.SweepInterval != 0 {
		c.SweepInterval = other.SweepInterval
	}
	if other.SessionTimeout != 0 {
		c.SessionTimeout = other.SessionTimeout
	}
	if other.DefaultMaxUsers != 0 {
		c.DefaultMaxUsers = other.DefaultMaxUsers
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.JournalPath != "" {
		c.JournalPath = other.JournalPath
	}
	if len(other.CORSOrigins) > 0 {
		c.CORSOrigins = other.CORSOrigins
	}
}
