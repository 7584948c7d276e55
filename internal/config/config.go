package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Projector ProjectorConfig `yaml:"projector"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ProjectorConfig holds outbox projector settings.
type ProjectorConfig struct {
	BatchSize    int           `yaml:"batch_size"    env:"PROJECTOR_BATCH_SIZE"    env-default:"50"`
	PollInterval time.Duration `yaml:"poll_interval" env:"PROJECTOR_POLL_INTERVAL" env-default:"2s"`
	// MaxBackoff caps the exponential backoff applied when the outbox
	// store is unavailable during a fetch.
	MaxBackoff time.Duration `yaml:"max_backoff" env:"PROJECTOR_MAX_BACKOFF" env-default:"30s"`
}

// CheckoutConfig holds checkout saga limits.
type CheckoutConfig struct {
	MaxItemsPerOrder int    `yaml:"max_items_per_order" env:"CHECKOUT_MAX_ITEMS_PER_ORDER" env-default:"100"`
	DefaultCurrency  string `yaml:"default_currency"    env:"CHECKOUT_DEFAULT_CURRENCY"    env-default:"USD"`
	// AuthAmountLimit is the maximum order total the payment gateway will
	// be asked to authorize, expressed as a decimal string.
	AuthAmountLimit string `yaml:"auth_amount_limit" env:"CHECKOUT_AUTH_AMOUNT_LIMIT" env-default:"100000"`
}
