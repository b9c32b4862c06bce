package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP server
	Server ServerConfig `mapstructure:"server"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// GeoIP
	GeoIP GeoIPConfig `mapstructure:"geoip"`

	// Analytics
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

// GeoIPConfig points at a local MaxMind country database. An empty path is
// allowed; country classification then degrades to "Unknown".
type GeoIPConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type AnalyticsConfig struct {
	DefaultWindowDays int `mapstructure:"default_window_days"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("analytics.default_window_days", 7)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.addr", "SERVER_ADDR")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")

	// GeoIP
	v.BindEnv("geoip.db_path", "GEOIP_DB_PATH")

	// Analytics
	v.BindEnv("analytics.default_window_days", "ANALYTICS_WINDOW_DAYS")
}
