// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by the cache, store and storage sections.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendGCS      = "gcs"
	BackendS3       = "s3"
	BackendLocal    = "local"
	BackendNone     = "none"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Image     ImageConfig     `mapstructure:"image"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Header  string `mapstructure:"header"`
}

// ScraperConfig governs album traversal.
type ScraperConfig struct {
	AlbumURL        string `mapstructure:"album_url"`
	UserAgent       string `mapstructure:"user_agent"`
	ImageSizeSuffix string `mapstructure:"image_size_suffix"`
}

// HTTPConfig configures page and image fetching.
type HTTPConfig struct {
	TimeoutSeconds int   `mapstructure:"timeout_seconds"`
	MaxBodyBytes   int64 `mapstructure:"max_body_bytes"`
	// RequestsPerSecond caps fetches per host; 0 disables the limit.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	SettleMs      int  `mapstructure:"settle_ms"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	TTLMs   int64  `mapstructure:"ttl_ms"`
}

// StoreConfig selects where ingested photo records are kept.
type StoreConfig struct {
	Backend  string `mapstructure:"backend"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// StorageConfig sets the blob backend for re-encoded images.
type StorageConfig struct {
	Backend           string `mapstructure:"backend"`
	GCSBucket         string `mapstructure:"gcs_bucket"`
	S3Bucket          string `mapstructure:"s3_bucket"`
	S3Region          string `mapstructure:"s3_region"`
	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	LocalDir          string `mapstructure:"local_dir"`
	Prefix            string `mapstructure:"prefix"`
}

// ImageConfig controls re-encoding before upload.
type ImageConfig struct {
	MaxWidth uint `mapstructure:"max_width"`
	Quality  int  `mapstructure:"quality"`
}

// PubSubConfig holds metadata for publish-subscribe notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// Enabled reports whether ingestion notifications are configured.
func (p PubSubConfig) Enabled() bool {
	return p.ProjectID != "" && p.TopicName != ""
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
	Verbose     bool `mapstructure:"verbose"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	// Exporter is "none" or "stdout".
	Exporter string `mapstructure:"exporter"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Hosting platforms hand the listen port over as PORT.
	if err := v.BindEnv("server.port", "SCRAPER_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.header", "X-API-Key")
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("auth.api_key", "")
	v.SetDefault("scraper.album_url", "")
	v.SetDefault("scraper.user_agent", "Mozilla/5.0")
	v.SetDefault("scraper.image_size_suffix", "=w1200-h1200")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_body_bytes", 32<<20)
	v.SetDefault("http.requests_per_second", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("headless.settle_ms", 0)
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", "data/cache")
	v.SetDefault("cache.ttl_ms", int64(72*time.Hour/time.Millisecond))
	v.SetDefault("store.backend", BackendPostgres)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", "singles")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("storage.backend", BackendNone)
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.s3_access_key_id", "")
	v.SetDefault("storage.s3_secret_access_key", "")
	v.SetDefault("storage.local_dir", "data/images")
	v.SetDefault("storage.prefix", "singles")
	v.SetDefault("image.max_width", 1200)
	v.SetDefault("image.quality", 80)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.verbose", false)
	v.SetDefault("telemetry.service_name", "photo-album-scraper")
	v.SetDefault("telemetry.exporter", "none")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.max_body_bytes must be >= 0")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Headless.Enabled && c.Headless.NavTimeoutSec <= 0 {
		return fmt.Errorf("headless.nav_timeout_seconds must be > 0 when headless is enabled")
	}
	if c.Cache.TTLMs <= 0 {
		return fmt.Errorf("cache.ttl_ms must be > 0")
	}
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir must be set for the file cache")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	switch c.Storage.Backend {
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
		}
	case BackendS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket must be set for the s3 backend")
		}
	case BackendLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set for the local backend")
		}
	case BackendMemory, BackendNone:
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if c.Image.Quality < 0 || c.Image.Quality > 100 {
		return fmt.Errorf("image.quality must be between 0 and 100")
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("telemetry.exporter %q is not supported", c.Telemetry.Exporter)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP service needs.
func (c Config) ValidateServer() error {
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Auth.Enabled && c.Auth.Header == "" {
		return fmt.Errorf("auth.header must be set when auth is enabled")
	}
	return nil
}

// ValidateIngest adds the checks only the ingestion command needs.
func (c Config) ValidateIngest() error {
	if c.Scraper.AlbumURL == "" {
		return fmt.Errorf("scraper.album_url must be set for ingestion")
	}
	if c.Store.Backend == BackendPostgres && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn must be set for the postgres store")
	}
	return nil
}

// HTTPTimeout converts the fetch timeout to a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout to a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// Settle converts the headless settle delay to a duration.
func (c Config) Settle() time.Duration {
	return time.Duration(c.Headless.SettleMs) * time.Millisecond
}

// CacheTTL converts the cache lifetime to a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMs) * time.Millisecond
}
