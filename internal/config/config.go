// Package config loads service settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"aviation_briefing/internal/storage"
)

type HTTPConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`

	ClickHouseAddr     string `yaml:"clickhouse_addr"`
	ClickHouseDatabase string `yaml:"clickhouse_database"`
	ClickHouseUser     string `yaml:"clickhouse_user"`
	ClickHousePassword string `yaml:"clickhouse_password"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	Subject       string `yaml:"subject"`
	Queue         string `yaml:"queue"`
	OutputSubject string `yaml:"output_subject"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type SummarizerConfig struct {
	Provider string        `yaml:"provider"`
	Token    string        `yaml:"token"`
	Model    string        `yaml:"model"`
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type WeatherAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type FeedConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	PruneInterval time.Duration `yaml:"prune_interval"` // Expired NOTAM cleanup; 0 disables.
}

// Config holds all settings shared by the binaries.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	NATS       NATSConfig       `yaml:"nats"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	WeatherAPI WeatherAPIConfig `yaml:"weather_api"`
	Feed       FeedConfig       `yaml:"feed"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info", Format: "json"},
		NATS: NATSConfig{
			Subject:       "reports.raw",
			Queue:         "briefing-feed",
			OutputSubject: "reports.parsed",
		},
		Kafka:      KafkaConfig{Topic: "parsed-reports"},
		Summarizer: SummarizerConfig{Timeout: 30 * time.Second},
		WeatherAPI: WeatherAPIConfig{
			BaseURL: "https://aviationweather.gov/api/data",
			Timeout: 30 * time.Second,
		},
		Feed:            FeedConfig{BatchSize: 100, FlushInterval: 2 * time.Second, PruneInterval: time.Hour},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. A .env file in the working directory is loaded when
// present without overriding variables already set.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Feed.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Addr = envOrDefault("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.APIKey = envOrDefault("API_KEY", c.HTTP.APIKey)
	c.Log.Level = envOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOrDefault("LOG_FORMAT", c.Log.Format)

	c.Storage.SQLitePath = envOrDefault("SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.PostgresURL = envOrDefault("POSTGRES_URL", c.Storage.PostgresURL)
	c.Storage.ClickHouseAddr = envOrDefault("CLICKHOUSE_ADDR", c.Storage.ClickHouseAddr)
	c.Storage.ClickHouseDatabase = envOrDefault("CLICKHOUSE_DATABASE", c.Storage.ClickHouseDatabase)
	c.Storage.ClickHouseUser = envOrDefault("CLICKHOUSE_USER", c.Storage.ClickHouseUser)
	c.Storage.ClickHousePassword = envOrDefault("CLICKHOUSE_PASSWORD", c.Storage.ClickHousePassword)

	c.NATS.URL = envOrDefault("NATS_URL", c.NATS.URL)
	c.NATS.Subject = envOrDefault("NATS_SUBJECT", c.NATS.Subject)
	c.NATS.Queue = envOrDefault("NATS_QUEUE", c.NATS.Queue)
	c.NATS.OutputSubject = envOrDefault("NATS_OUTPUT_SUBJECT", c.NATS.OutputSubject)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = parseBrokers(v)
	}
	c.Kafka.Topic = envOrDefault("KAFKA_TOPIC", c.Kafka.Topic)

	c.Summarizer.Provider = envOrDefault("SUMMARIZER_PROVIDER", c.Summarizer.Provider)
	c.Summarizer.Token = envOrDefault("SUMMARIZER_TOKEN", c.Summarizer.Token)
	c.Summarizer.Model = envOrDefault("SUMMARIZER_MODEL", c.Summarizer.Model)
	c.Summarizer.URL = envOrDefault("SUMMARIZER_URL", c.Summarizer.URL)
	c.WeatherAPI.BaseURL = envOrDefault("WEATHER_API_URL", c.WeatherAPI.BaseURL)

	var err error
	if c.Feed.BatchSize, err = envOrDefaultInt("BATCH_SIZE", c.Feed.BatchSize); err != nil {
		return err
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SUMMARIZER_TIMEOUT", &c.Summarizer.Timeout},
		{"WEATHER_API_TIMEOUT", &c.WeatherAPI.Timeout},
		{"BATCH_FLUSH_INTERVAL", &c.Feed.FlushInterval},
		{"NOTAM_PRUNE_INTERVAL", &c.Feed.PruneInterval},
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = envDuration(d.key, *d.dst); err != nil {
			return err
		}
	}
	return nil
}

// StorageBackends returns the storage settings in the form storage.Open
// takes.
func (c *Config) StorageBackends() storage.Config {
	return storage.Config{
		SQLitePath:  c.Storage.SQLitePath,
		PostgresURL: c.Storage.PostgresURL,
		ClickHouse: storage.ClickHouseConfig{
			Addr:     c.Storage.ClickHouseAddr,
			Database: c.Storage.ClickHouseDatabase,
			User:     c.Storage.ClickHouseUser,
			Password: c.Storage.ClickHousePassword,
		},
	}
}

// ValidateFeedWorker checks the settings the feed worker cannot run
// without.
func (c *Config) ValidateFeedWorker() error {
	if c.NATS.URL == "" {
		return errors.New("NATS_URL is required for feed-worker")
	}
	if c.NATS.Subject == "" {
		return errors.New("NATS_SUBJECT is required for feed-worker")
	}
	if c.Kafka.Topic == "" && len(c.Kafka.Brokers) > 0 {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
