package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	pkgstrings "graphtrust/pkg/platform/strings"
)

// Model store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the full process configuration. Defaults come from Default, then
// an optional YAML file named by GRAPHTRUST_CONFIG, then environment
// variables.
type Config struct {
	Server   Server         `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Model    ModelConfig    `yaml:"model"`
	Risk     RiskConfig     `yaml:"risk"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	AdminToken      string        `yaml:"admin_token"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// DeviceFingerprinting derives device keys from user agents. When off,
	// every KYC submission links a per-user device.
	DeviceFingerprinting bool `yaml:"device_fingerprinting"`
	// RequireDeliveredOrder rejects reviews unless a delivered order from
	// the buyer to the seller has been recorded.
	RequireDeliveredOrder bool `yaml:"require_delivered_order"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// ModelConfig selects the registry backend and training defaults.
type ModelConfig struct {
	Store       string `yaml:"store"`
	Dir         string `yaml:"dir"`
	Retention   int    `yaml:"retention"`
	SampleCount int    `yaml:"sample_count"`
	Seed        uint64 `yaml:"seed"`
	Trees       int    `yaml:"trees"`
	MaxDepth    int    `yaml:"max_depth"`
	// TrainOnStart fits a model at boot when the registry has none.
	TrainOnStart bool `yaml:"train_on_start"`
}

// RiskConfig holds tier cut-offs: scores below HighBelow are high risk,
// below MediumBelow medium, anything else low.
type RiskConfig struct {
	HighBelow   float64 `yaml:"high_below"`
	MediumBelow float64 `yaml:"medium_below"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type PostgresConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// KafkaConfig enables the event consumer when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Group   string   `yaml:"group"`
}

// Enabled reports whether the event consumer should run.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:                 ":8080",
			ShutdownTimeout:      10 * time.Second,
			DeviceFingerprinting: true,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Model: ModelConfig{
			Store:       StoreFile,
			Dir:         "data/models",
			Retention:   5,
			SampleCount: 100,
			Seed:        42,
			Trees:       50,
			MaxDepth:    12,
		},
		Risk: RiskConfig{HighBelow: 2.0, MediumBelow: 3.5},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{MaxOpenConns: 10},
		Kafka:    KafkaConfig{Topic: "marketplace.events", Group: "graphtrust"},
	}
}

// FromEnv builds the configuration so main stays lean.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("GRAPHTRUST_CONFIG"); path != "" {
		if err := loadYAMLFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	if err := applyEnvironment(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvironment(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("GRAPHTRUST_ADDR", &cfg.Server.Addr)
	str("ADMIN_API_TOKEN", &cfg.Server.AdminToken)
	boolean("DEVICE_FINGERPRINTING", &cfg.Server.DeviceFingerprinting)
	boolean("REVIEW_REQUIRE_ORDER", &cfg.Server.RequireDeliveredOrder)
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		} else {
			cfg.Server.ShutdownTimeout = d
		}
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	str("MODEL_STORE", &cfg.Model.Store)
	str("MODEL_DIR", &cfg.Model.Dir)
	integer("MODEL_RETENTION", &cfg.Model.Retention)
	integer("TRAIN_SAMPLE_COUNT", &cfg.Model.SampleCount)
	integer("TRAIN_TREES", &cfg.Model.Trees)
	integer("TRAIN_MAX_DEPTH", &cfg.Model.MaxDepth)
	boolean("TRAIN_ON_START", &cfg.Model.TrainOnStart)
	if v := os.Getenv("TRAIN_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TRAIN_SEED: %w", err))
		} else {
			cfg.Model.Seed = seed
		}
	}

	float("RISK_HIGH_BELOW", &cfg.Risk.HighBelow)
	float("RISK_MEDIUM_BELOW", &cfg.Risk.MediumBelow)

	str("REDIS_URL", &cfg.Redis.URL)
	integer("REDIS_POOL_SIZE", &cfg.Redis.PoolSize)

	str("DATABASE_URL", &cfg.Postgres.DSN)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = pkgstrings.SplitList(v, ",")
	}
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	str("KAFKA_GROUP", &cfg.Kafka.Group)

	return errors.Join(errs...)
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Model.Store {
	case StoreFile:
		if c.Model.Dir == "" {
			errs = append(errs, errors.New("model.dir is required for the file store"))
		}
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required for the redis store"))
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown model store %q", c.Model.Store))
	}
	if c.Model.Retention < 1 {
		errs = append(errs, errors.New("model.retention must be at least 1"))
	}
	if c.Model.SampleCount < 1 {
		errs = append(errs, errors.New("model.sample_count must be at least 1"))
	}
	if c.Risk.HighBelow < 0 || c.Risk.MediumBelow > 5 || c.Risk.HighBelow >= c.Risk.MediumBelow {
		errs = append(errs, fmt.Errorf("risk thresholds must satisfy 0 <= high_below < medium_below <= 5, got %.2f and %.2f",
			c.Risk.HighBelow, c.Risk.MediumBelow))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Kafka.Enabled() && (c.Kafka.Topic == "" || c.Kafka.Group == "") {
		errs = append(errs, errors.New("kafka.topic and kafka.group are required when brokers are set"))
	}
	return errors.Join(errs...)
}
