package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "KRW-SOL", cfg.Data.Symbol)
	assert.Equal(t, "nekito_strategy_config.json", cfg.Strategy.File)
	assert.Equal(t, 14, cfg.Strategy.RSIPeriod)
	assert.Equal(t, 10, cfg.Strategy.VolumeWindow)
	assert.Equal(t, 24*time.Hour, cfg.Strategy.Horizon)
	assert.Equal(t, 5400, cfg.Search.Ranges.Size())
	assert.Equal(t, 90.0, cfg.Search.MinSuccessRate)
	assert.Equal(t, 90.0, cfg.Alert.MinSuccessRate)
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateBot(), "telegram credentials are required for the bot")
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
  chat_id: "42"
data:
  path: bars.csv
strategy:
  horizon: 12h
  rsi_period: 7
search:
  rsi_thresholds: [20, 25]
  volume_multipliers: [1.5]
  hour_starts: [0]
  hour_ends: [23]
  workers: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bars.csv", cfg.Data.Path)
	assert.Equal(t, 12*time.Hour, cfg.Strategy.Horizon)
	assert.Equal(t, 7, cfg.Strategy.RSIPeriod)
	assert.Equal(t, []float64{20, 25}, cfg.Search.RSIThresholds)
	assert.Equal(t, 2, cfg.Search.Ranges.Size())
	assert.Equal(t, 3, cfg.Search.Workers)
	require.NoError(t, cfg.ValidateBot())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  bot_token: file-token\n")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "99")
	t.Setenv("DATA_PATH", "/tmp/bars.parquet")
	t.Setenv("SEARCH_WORKERS", "6")
	t.Setenv("CRON_ALERT", "0 0 * * * *")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "99", cfg.Telegram.ChatID)
	assert.Equal(t, "/tmp/bars.parquet", cfg.Data.Path)
	assert.Equal(t, 6, cfg.Search.Workers)
	assert.Equal(t, "0 0 * * * *", cfg.Schedule.AlertCron)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadRanges(t *testing.T) {
	cfg, err := Load(writeConfig(t, "search:\n  hour_ends: [25]\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestLocation(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Nil(t, loc, "no zone configured keeps timestamps as loaded")

	t.Setenv("DATA_TIMEZONE", "Asia/Seoul")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, 9, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).In(loc).Hour())

	cfg.Data.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "data.timezone")
}
