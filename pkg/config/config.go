package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"EvoTrader/internal/domain/models"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Engine struct {
		DefaultSymbol     string                `yaml:"default_symbol"`
		CandleSeconds     int64                 `yaml:"candle_seconds"`
		CandleCapacity    int                   `yaml:"candle_capacity"`
		PopulationSize    int                   `yaml:"population_size"`
		Elites            int                   `yaml:"elites"`
		EvolveInterval    time.Duration         `yaml:"evolve_interval"`
		AlertHistory      int                   `yaml:"alert_history"`
		VoteWindow        int                   `yaml:"vote_window"`
		SignalLogCapacity int                   `yaml:"signal_log_capacity"`
		MinConfirmScore   float64               `yaml:"min_confirm_score"`
		Seed              int64                 `yaml:"seed"`
		Settings          models.EngineSettings `yaml:"settings"`
		Bots              []models.BotConfig    `yaml:"bots"`
	} `yaml:"engine"`
	Dispatch struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"dispatch"`
	Feed struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		MaxRPS         int           `yaml:"max_rps"`
		BufferSize     int           `yaml:"buffer_size"`
	} `yaml:"feed"`
	Kafka struct {
		Enabled  bool     `yaml:"enabled"`
		Brokers  []string `yaml:"brokers"`
		Topic    string   `yaml:"topic"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	SignalBus struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"signal_bus"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		Table        string        `yaml:"table"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend"` // memory or redis
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file: run on defaults alone.
	} else if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("FEED_SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("LIVE_ENDPOINT"); v != "" {
		c.Engine.Settings.LiveEndpoint = v
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Engine.DefaultSymbol == "" {
		c.Engine.DefaultSymbol = "SYMBOL1"
	}
	if c.Engine.CandleSeconds == 0 {
		c.Engine.CandleSeconds = 60
	}
	if c.Engine.CandleCapacity == 0 {
		c.Engine.CandleCapacity = 5000
	}
	if c.Engine.PopulationSize == 0 {
		c.Engine.PopulationSize = 14
	}
	if c.Engine.Elites == 0 {
		c.Engine.Elites = 4
	}
	if c.Engine.EvolveInterval == 0 {
		c.Engine.EvolveInterval = 30 * time.Second
	}
	if c.Engine.AlertHistory == 0 {
		c.Engine.AlertHistory = 2000
	}
	if c.Engine.VoteWindow == 0 {
		c.Engine.VoteWindow = 200
	}
	if c.Engine.SignalLogCapacity == 0 {
		c.Engine.SignalLogCapacity = 500
	}
	if c.Engine.MinConfirmScore == 0 {
		c.Engine.MinConfirmScore = 0.6
	}
	if c.Engine.Settings.ExecutionMode == "" {
		c.Engine.Settings = models.DefaultEngineSettings()
	}
	if c.Dispatch.Timeout == 0 {
		c.Dispatch.Timeout = 7 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 2 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Engine.PopulationSize < 2 {
		return fmt.Errorf("engine.population_size must be at least 2")
	}
	if c.Engine.Elites < 1 || c.Engine.Elites > c.Engine.PopulationSize {
		return fmt.Errorf("engine.elites must be in [1, population_size]")
	}
	if c.Feed.Enabled && c.Feed.WebSocketURL == "" {
		return fmt.Errorf("feed.websocket_url is required when feed is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required when kafka is enabled")
	}
	if c.SignalBus.Enabled && len(c.SignalBus.Brokers) == 0 {
		return fmt.Errorf("signal_bus.brokers are required when signal bus is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}
	return nil
}
