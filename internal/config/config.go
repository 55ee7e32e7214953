package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // data.timezone must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SignalSentinel/internal/search"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Data struct {
		Path   string `yaml:"path"`
		Format string `yaml:"format"`
		Symbol string `yaml:"symbol"`
		Range  string `yaml:"range"` // Yahoo range when no path is set
		// Timezone is the IANA zone entry hours are read in. Empty keeps each
		// timestamp's own zone: UTC for Yahoo and for files without offsets.
		Timezone string `yaml:"timezone"`
	} `yaml:"data"`
	Strategy struct {
		File         string        `yaml:"file"`
		RSIPeriod    int           `yaml:"rsi_period"`
		VolumeWindow int           `yaml:"volume_window"`
		Horizon      time.Duration `yaml:"horizon"`
	} `yaml:"strategy"`
	Search struct {
		search.Ranges  `yaml:",inline"`
		MinSuccessRate float64 `yaml:"min_success_rate"`
		Workers        int     `yaml:"workers"`
		ProgressEvery  int     `yaml:"progress_every"`
	} `yaml:"search"`
	Alert struct {
		MinSuccessRate float64 `yaml:"min_success_rate"`
	} `yaml:"alert"`
	Schedule struct {
		AlertCron  string `yaml:"alert_cron"`
		EvolveCron string `yaml:"evolve_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file next to the working
// directory, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Variables already present in the environment win over .env.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("DATA_TIMEZONE"); v != "" {
		c.Data.Timezone = v
	}
	if v := os.Getenv("STRATEGY_FILE"); v != "" {
		c.Strategy.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_ALERT"); v != "" {
		c.Schedule.AlertCron = v
	}
	if v := os.Getenv("CRON_EVOLVE"); v != "" {
		c.Schedule.EvolveCron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("SEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.Workers = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Data.Symbol == "" {
		c.Data.Symbol = "KRW-SOL"
	}
	if c.Data.Range == "" {
		c.Data.Range = "730d"
	}
	if c.Strategy.File == "" {
		c.Strategy.File = "nekito_strategy_config.json"
	}
	if c.Strategy.RSIPeriod == 0 {
		c.Strategy.RSIPeriod = 14
	}
	if c.Strategy.VolumeWindow == 0 {
		c.Strategy.VolumeWindow = 10
	}
	if c.Strategy.Horizon == 0 {
		c.Strategy.Horizon = 24 * time.Hour
	}

	def := search.DefaultRanges()
	if len(c.Search.RSIThresholds) == 0 {
		c.Search.RSIThresholds = def.RSIThresholds
	}
	if len(c.Search.VolumeMultipliers) == 0 {
		c.Search.VolumeMultipliers = def.VolumeMultipliers
	}
	if len(c.Search.HourStarts) == 0 {
		c.Search.HourStarts = def.HourStarts
	}
	if len(c.Search.HourEnds) == 0 {
		c.Search.HourEnds = def.HourEnds
	}
	if c.Search.MinSuccessRate == 0 {
		c.Search.MinSuccessRate = 90
	}
	if c.Search.ProgressEvery == 0 {
		c.Search.ProgressEvery = search.DefaultProgressEvery
	}
	if c.Alert.MinSuccessRate == 0 {
		c.Alert.MinSuccessRate = 90
	}
	if c.Schedule.AlertCron == "" {
		c.Schedule.AlertCron = "0 5 * * * *"
	}
	if c.Schedule.EvolveCron == "" {
		c.Schedule.EvolveCron = "0 30 3 * * 1"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signal_sentinel.db"
	}
}

// Validate checks the settings every front end depends on.
func (c *Config) Validate() error {
	if c.Strategy.RSIPeriod <= 0 {
		return fmt.Errorf("strategy.rsi_period must be positive")
	}
	if c.Strategy.VolumeWindow <= 0 {
		return fmt.Errorf("strategy.volume_window must be positive")
	}
	if c.Strategy.Horizon <= 0 {
		return fmt.Errorf("strategy.horizon must be positive")
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must not be negative")
	}
	if err := c.Search.Ranges.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves data.timezone. It returns nil when no zone is configured.
func (c *Config) Location() (*time.Location, error) {
	if c.Data.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data.timezone: %w", err)
	}
	return loc, nil
}

// ValidateBot additionally requires the Telegram credentials the bot cannot run without.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
