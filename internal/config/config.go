package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Broadcast BroadcastConfig `mapstructure:"broadcast" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	// MigrationsDir is the directory holding goose SQL migrations,
	// applied at startup.
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`
}

// BroadcastConfig contains settings for the real-time broadcast channel.
type BroadcastConfig struct {
	// Channel is the logical channel name events are published on.
	Channel string `mapstructure:"channel" validate:"required"`

	// TokenSecret signs subscriber tokens. Subscribers present a token
	// issued by /realtime/token when opening the websocket.
	TokenSecret string `mapstructure:"token_secret" validate:"required,min=32"`

	// TokenTTL bounds the lifetime of issued subscriber tokens.
	TokenTTL time.Duration `mapstructure:"token_ttl" validate:"required"`

	// PublishTimeout bounds a single publish attempt; a timed-out publish
	// is logged and dropped, never retried synchronously.
	PublishTimeout time.Duration `mapstructure:"publish_timeout" validate:"required"`

	// QueueSize is the dispatcher's event buffer. When full, new events are
	// dropped with a log line rather than blocking a committed mutation.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}
