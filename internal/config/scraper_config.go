package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type ScraperConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	IntervalMinutes   int           `mapstructure:"interval_minutes" validate:"gte=1"`
	MaxPages          int           `mapstructure:"max_pages" validate:"gte=1,lte=50"`
	Sources           []string      `mapstructure:"sources" validate:"dive,oneof=olx pracuj"`
	UserAgent         string        `mapstructure:"user_agent" validate:"required"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=1,lte=10"`
	MinDelay          time.Duration `mapstructure:"min_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	ExpirationDays    int           `mapstructure:"expiration_days" validate:"gte=1"`
	PracujCity        string        `mapstructure:"pracuj_city"`
	Cities            []string      `mapstructure:"cities"`
	Categories        []string      `mapstructure:"categories"`
}

func (config ScraperConfig) validate() error {
	var errs []error

	if config.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive"))
	}

	if config.MinDelay < 0 || config.MaxDelay < config.MinDelay {
		errs = append(errs, fmt.Errorf("invalid politeness delay range [%v, %v]", config.MinDelay, config.MaxDelay))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (config ScraperConfig) bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	if err := v.BindEnv("scraper.enabled", "SCRAPING_ENABLED"); err != nil {
		errs = append(errs, err)
	}

	if err := v.BindEnv("scraper.interval_minutes", "SCRAPING_INTERVAL_MINUTES"); err != nil {
		errs = append(errs, err)
	}

	if err := v.BindEnv("scraper.user_agent", "USER_AGENT"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

type SearchConfig struct {
	MaxResults   int           `mapstructure:"max_results" validate:"gte=1,lte=500"`
	RandomSample int           `mapstructure:"random_sample" validate:"gte=1,lte=10"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

type AIConfig struct {
	Key                  string  `mapstructure:"key"`
	Model                string  `mapstructure:"model"`
	MaxRequestsPerMinute float32 `mapstructure:"max_requests_per_minute" validate:"gte=0"`
}

func (config AIConfig) Enabled() bool {
	return config.Key != ""
}

func (config AIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("ai.key", "AI_KEY")
}

type MetricsConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

func (config MetricsConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("metrics.address", "METRICS_ADDRESS")
}
