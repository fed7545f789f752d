package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Wallet delete policies for movement history referencing a removed wallet.
const (
	// DeletePolicyRestrict refuses wallet removal while movement history exists.
	DeletePolicyRestrict = "restrict"
	// DeletePolicyRetain removes the wallet and its balances but keeps movement
	// rows as orphaned audit records.
	DeletePolicyRetain = "retain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Ledger   LedgerConfig      `mapstructure:"ledger"`
	Rates    map[string]string `mapstructure:"rates"` // "BTC/USD" -> "65000.5"
	Log      LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig tunes the ledger engine.
type LedgerConfig struct {
	// LockWait bounds how long an operation waits for a (wallet, currency)
	// balance lock before failing with a timeout.
	LockWait time.Duration `mapstructure:"lock_wait"`
	// IdempotencyTTL is the Redis retention for replayed operation results.
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
	// WalletDeletePolicy is one of DeletePolicyRestrict or DeletePolicyRetain.
	WalletDeletePolicy string `mapstructure:"wallet_delete_policy"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WL_ (Wallet Ledger).
// Nested keys use underscore: WL_DATABASE_HOST, WL_LEDGER_LOCK_WAIT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "wallet_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ledger.lock_wait", "3s")
	v.SetDefault("ledger.idempotency_ttl", "24h")
	v.SetDefault("ledger.wallet_delete_policy", DeletePolicyRestrict)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: WL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("WL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Ledger.WalletDeletePolicy != DeletePolicyRestrict &&
		cfg.Ledger.WalletDeletePolicy != DeletePolicyRetain {
		return nil, fmt.Errorf("invalid ledger.wallet_delete_policy %q", cfg.Ledger.WalletDeletePolicy)
	}

	return &cfg, nil
}
