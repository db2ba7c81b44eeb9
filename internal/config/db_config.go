package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type DBConfig struct {
	ConnectionString string        `mapstructure:"connection_string" validate:"required"`
	BusyTimeout      time.Duration `mapstructure:"busy_timeout"`
}

// DSN is the SQLite connection string with the busy timeout pragma appended,
// unless the configured string already sets one.
func (config DBConfig) DSN() string {
	if config.BusyTimeout <= 0 || strings.Contains(config.ConnectionString, "busy_timeout") {
		return config.ConnectionString
	}
	separator := "?"
	if strings.Contains(config.ConnectionString, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", config.ConnectionString, separator, config.BusyTimeout.Milliseconds())
}

func (config DBConfig) validate() error {
	if config.BusyTimeout < 0 {
		return fmt.Errorf("busy_timeout must not be negative, got %v", config.BusyTimeout)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("db.connection_string", "DB_CONNECTION_STRING"); err != nil {
		return err
	}
	return v.BindEnv("db.busy_timeout", "DB_BUSY_TIMEOUT")
}
