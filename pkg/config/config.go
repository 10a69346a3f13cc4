package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Sites    SitesConfig    `mapstructure:"sites"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

// ServerConfig configures the API listener. Site specific listeners are
// declared on the sites themselves.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RendererConfig configures the headless browser.
type RendererConfig struct {
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	UserAgent       string        `mapstructure:"user_agent"`
	ExecPath        string        `mapstructure:"exec_path"`
}

// ScrapeConfig configures scrape orchestration.
type ScrapeConfig struct {
	// RatePerSecond limits scrapes per site. Zero disables the limiter.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

// SitesConfig points at an optional YAML file with extra site adapters.
type SitesConfig struct {
	File string `mapstructure:"file"`
}

// PostgresConfig enables scrape run history when URL is set.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig enables headline publishing when Addr is set.
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// ArchiveConfig enables the S3 snapshot archive when Bucket is set.
type ArchiveConfig struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	OnEmptyOnly  bool   `mapstructure:"on_empty_only"`
}

// Load reads configuration from an optional config.yaml and the environment.
// Environment keys use the HEADLINES_ prefix, e.g. HEADLINES_SERVER_PORT.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HEADLINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("renderer.page_load_timeout", 60*time.Second)
	v.SetDefault("renderer.max_concurrency", 4)
	v.SetDefault("renderer.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("renderer.exec_path", "")
	v.SetDefault("scrape.rate_per_second", 0)
	v.SetDefault("sites.file", "")
	v.SetDefault("postgres.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel_prefix", "headlines")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "snapshots")
	v.SetDefault("archive.region", "")
	v.SetDefault("archive.use_path_style", false)
	v.SetDefault("archive.on_empty_only", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Renderer.PageLoadTimeout <= 0 {
		return eris.New("config: renderer.page_load_timeout must be positive")
	}
	if c.Renderer.MaxConcurrency <= 0 {
		return eris.New("config: renderer.max_concurrency must be positive")
	}
	if c.Scrape.RatePerSecond < 0 {
		return eris.New("config: scrape.rate_per_second must not be negative")
	}
	return nil
}
