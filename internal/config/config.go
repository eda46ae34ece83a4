package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8000"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type StoreConfig struct {
	Driver       string `yaml:"driver" env:"STORE_DRIVER" env-default:"mongo"`
	DatabaseURL  string `yaml:"-" env:"DATABASE_URL"`
	DatabaseName string `yaml:"database_name" env:"DATABASE_NAME" env-default:"storefront"`
}

// RedisConfig enables the session lock when Addr is set. LockTTL must cover
// HTTP.RequestTimeout so a lock cannot expire under a live request.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"-" env:"REDIS_PASSWORD"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"SESSION_LOCK_TTL" env-default:"35s"`
}

// KafkaConfig enables order events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"orders_topic" env:"KAFKA_ORDERS_TOPIC" env-default:"orders"`
}

type CheckoutConfig struct {
	GuardedClear bool `yaml:"guarded_clear" env:"CHECKOUT_GUARDED_CLEAR" env-default:"false"`
}

// Load reads the YAML file named by CONFIG_PATH when set, otherwise the environment only.
// Environment variables override values from the file.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return LoadByPath(path)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}
	return &cfg, cfg.validate()
}

func LoadByPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", DriverMongo)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Redis.Addr != "" && c.Redis.LockTTL < c.HTTP.RequestTimeout {
		return fmt.Errorf("SESSION_LOCK_TTL (%s) must not be shorter than HTTP_REQUEST_TIMEOUT (%s)",
			c.Redis.LockTTL, c.HTTP.RequestTimeout)
	}
	return nil
}
