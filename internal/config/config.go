package config

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/spf13/viper"
)

type Config struct {
	Files   FilesConfig   `mapstructure:"files"`
	API     APIConfig     `mapstructure:"api"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Checker CheckerConfig `mapstructure:"checker"`
	Log     LogConfig     `mapstructure:"log"`
	Status  StatusConfig  `mapstructure:"status"`
}

type FilesConfig struct {
	Wallets string `mapstructure:"wallets"`
	Proxies string `mapstructure:"proxies"`
	Result  string `mapstructure:"result"`
}

// APIConfig holds the remote endpoint and the browser-like headers it expects.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	Accept         string `mapstructure:"accept"`
	AcceptLanguage string `mapstructure:"accept_language"`
	Referer        string `mapstructure:"referer"`
	Origin         string `mapstructure:"origin"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // per call
}

type CheckerConfig struct {
	Workers int        `mapstructure:"workers"`
	Pause   DelayRange `mapstructure:"pause"` // between login and points fetch
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type DelayRange struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

func (r DelayRange) GetRandomDelay() time.Duration {
	delta := r.Max - r.Min
	if delta <= 0 {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int64N(int64(delta)))
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// e.g. XTERIO_CHECKER_WORKERS=10
	v.SetEnvPrefix("xterio")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperrors.NewConfiguration("failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfiguration("failed to decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("files.wallets", "wallets.txt")
	v.SetDefault("files.proxies", "proxies.txt")
	v.SetDefault("files.result", "result.txt")

	v.SetDefault("api.base_url", "https://api.xter.io")
	v.SetDefault("api.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("api.accept", "*/*")
	v.SetDefault("api.accept_language", "en-US,en;q=0.9")
	v.SetDefault("api.referer", "https://xter.io/")
	v.SetDefault("api.origin", "https://xter.io")

	v.SetDefault("http.timeout", 20*time.Second)

	v.SetDefault("checker.workers", 5)
	v.SetDefault("checker.pause.min", 2*time.Second)
	v.SetDefault("checker.pause.max", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "xterio_checker.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.max_backups", 7)

	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":9090")
}

func (c *Config) Validate() error {
	switch {
	case c.Checker.Workers < 1:
		return apperrors.NewConfiguration("checker.workers must be at least 1", nil)
	case c.HTTP.Timeout <= 0:
		return apperrors.NewConfiguration("http.timeout must be positive", nil)
	case c.Checker.Pause.Min < 0 || c.Checker.Pause.Max < c.Checker.Pause.Min:
		return apperrors.NewConfiguration("checker.pause must satisfy 0 <= min <= max", nil)
	case strings.TrimSpace(c.API.BaseURL) == "":
		return apperrors.NewConfiguration("api.base_url is required", nil)
	case c.Files.Wallets == "" || c.Files.Proxies == "" || c.Files.Result == "":
		return apperrors.NewConfiguration("files.wallets, files.proxies and files.result are required", nil)
	}
	return nil
}
