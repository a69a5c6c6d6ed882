package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"EconDash/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PlaceholderAPIKey is the sentinel meaning "no FRED key configured".
const PlaceholderAPIKey = "YOUR_API_KEY"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Fred struct {
		APIKey        string        `yaml:"api_key" default:"YOUR_API_KEY"`
		BaseURL       string        `yaml:"base_url" default:"https://api.stlouisfed.org/fred" validate:"required,url"`
		Timeout       time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
		RatePerMinute int           `yaml:"rate_per_minute" default:"120" validate:"gte=1"`
	} `yaml:"fred"`
	Pipeline struct {
		CacheTTL   time.Duration `yaml:"cache_ttl" default:"24h" validate:"gte=0"`
		RunTimeout time.Duration `yaml:"run_timeout" default:"2m" validate:"gt=0"`
	} `yaml:"pipeline"`
	Storage struct {
		Backend string `yaml:"backend" default:"sqlite" validate:"oneof=sqlite clickhouse"`
		Table   string `yaml:"table" default:"econ_data" validate:"required"`
		SQLite  struct {
			Path        string        `yaml:"path" default:"econ.db"`
			BusyTimeout time.Duration `yaml:"busy_timeout" default:"5s" validate:"gte=0"`
		} `yaml:"sqlite"`
		ClickHouse struct {
			Host             string        `yaml:"host" default:"localhost"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"econ"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			UseHTTP          bool          `yaml:"use_http"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
			WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		} `yaml:"clickhouse"`
	} `yaml:"storage"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		Key     string `yaml:"key" default:"econdash:yearly"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"econ.dataset.refreshed"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Default returns a Config populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file is not an error: the dashboard can run from env alone.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables
// and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Fred.APIKey = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Storage.Backend == "sqlite" && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required for the sqlite backend")
	}
	if c.Storage.Backend == "clickhouse" && c.Storage.ClickHouse.Host == "" {
		return fmt.Errorf("storage.clickhouse.host is required for the clickhouse backend")
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis cache")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// HasProviderCredential reports whether a usable FRED key is configured.
func (c *Config) HasProviderCredential() bool {
	k := strings.TrimSpace(c.Fred.APIKey)
	return k != "" && k != PlaceholderAPIKey
}
