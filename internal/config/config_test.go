package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfig = `
logger:
  log_level: "DEBUG"
  output_file: "./logs/test.log"
bot:
  token: "fileToken"
db:
  connection_string: "file.db"
scraper:
  interval_minutes: 30
  max_pages: 2
  sources: ["olx"]
search:
  session_ttl: "2h"
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {

	t.Setenv("TOKEN", "overrideToken")
	t.Setenv("ADMIN_IDS", "11,22")
	t.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	t.Setenv("SCRAPING_INTERVAL_MINUTES", "15")
	t.Setenv("SCRAPING_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("AI_KEY", "overrideKey")

	cfg, err := loadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "overrideToken", cfg.Bot.Token)
	assert.Equal(t, []int64{11, 22}, cfg.Bot.AdminIDs)
	assert.True(t, cfg.Bot.IsAdmin(22))
	assert.False(t, cfg.Bot.IsAdmin(33))
	assert.Equal(t, "newConnectionString", cfg.DB.ConnectionString)
	assert.Equal(t, 15, cfg.Scraper.IntervalMinutes)
	assert.False(t, cfg.Scraper.Enabled)
	assert.Equal(t, LevelError, cfg.Logger.LogLevel)
	assert.Equal(t, "overrideKey", cfg.AI.Key)
	assert.True(t, cfg.AI.Enabled())
}

func Test_Config_DefaultsAreApplied(t *testing.T) {

	cfg, err := loadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Scraper.MaxPages)
	assert.Equal(t, []string{"olx"}, cfg.Scraper.Sources)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Scraper.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Scraper.MinDelay)
	assert.Equal(t, 5*time.Second, cfg.Scraper.MaxDelay)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, 10, cfg.Search.RandomSample)
	assert.Equal(t, 2*time.Hour, cfg.Search.SessionTTL)
	assert.Equal(t, ":8080", cfg.Metrics.Address)
	assert.Equal(t, 5*time.Second, cfg.DB.BusyTimeout)
	assert.Equal(t, "file.db?_pragma=busy_timeout(5000)", cfg.DB.DSN())
}

func Test_DBConfig_DSN(t *testing.T) {
	assert.Equal(t, "bot.db", DBConfig{ConnectionString: "bot.db"}.DSN())
	assert.Equal(t, "bot.db?mode=rwc&_pragma=busy_timeout(250)",
		DBConfig{ConnectionString: "bot.db?mode=rwc", BusyTimeout: 250 * time.Millisecond}.DSN())
	assert.Equal(t, "bot.db?_pragma=busy_timeout(10)",
		DBConfig{ConnectionString: "bot.db?_pragma=busy_timeout(10)", BusyTimeout: time.Second}.DSN())
}

func Test_Config_WhenBusyTimeoutNegative_ShouldFail(t *testing.T) {

	_, err := loadConfig(writeConfig(t, `
logger:
  log_level: "INFO"
  output_file: "./logs/test.log"
bot:
  token: "t"
db:
  busy_timeout: "-1s"
`))
	assert.Error(t, err)
}

func Test_Config_WhenTokenMissing_ShouldFail(t *testing.T) {

	_, err := loadConfig(writeConfig(t, `
logger:
  log_level: "INFO"
  output_file: "./logs/test.log"
db:
  connection_string: "file.db"
`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func Test_Config_WhenUnknownSource_ShouldFail(t *testing.T) {

	_, err := loadConfig(writeConfig(t, `
logger:
  log_level: "INFO"
  output_file: "./logs/test.log"
bot:
  token: "t"
scraper:
  sources: ["olx", "indeed"]
`))
	assert.Error(t, err)
}

func Test_Config_WhenDelayRangeInverted_ShouldFail(t *testing.T) {

	_, err := loadConfig(writeConfig(t, `
logger:
  log_level: "INFO"
  output_file: "./logs/test.log"
bot:
  token: "t"
scraper:
  min_delay: "5s"
  max_delay: "1s"
`))
	assert.Error(t, err)
}
