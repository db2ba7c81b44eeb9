package config

import (
	"fmt"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"strings"
)

type BotConfig struct {
	Token    string  `mapstructure:"token"`
	AdminIDs []int64 `mapstructure:"admin_ids"`
}

func (config BotConfig) IsAdmin(userID int64) bool {
	return lo.Contains(config.AdminIDs, userID)
}

func (config BotConfig) validate() error {

	var missingFields []string

	if config.Token == "" {
		missingFields = append(missingFields, "token")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	for _, id := range config.AdminIDs {
		if id <= 0 {
			return fmt.Errorf("invalid admin id: %d", id)
		}
	}

	return nil
}

func (config BotConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("bot.token", "TOKEN"); err != nil {
		return err
	}
	return v.BindEnv("bot.admin_ids", "ADMIN_IDS")
}
