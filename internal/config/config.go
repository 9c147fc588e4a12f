package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PhotographerEntry is one catalog entry as configured.
type PhotographerEntry struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Price  int      `yaml:"price"`
	Styles []string `yaml:"styles"`
}

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Media struct {
		Dir string `yaml:"dir"`
	} `yaml:"media"`

	Session struct {
		TimeoutMinutes int `yaml:"timeout_minutes"`
		SweepSeconds   int `yaml:"sweep_seconds"`
	} `yaml:"session"`

	Redis struct {
		Address          string `yaml:"address"`
		Password         string `yaml:"password"`
		DB               int    `yaml:"db"`
		RatingTTLSeconds int    `yaml:"rating_ttl_seconds"`
	} `yaml:"redis"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
	} `yaml:"sheets"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		IntervalHours int    `yaml:"interval_hours"`
		Keep          int    `yaml:"keep"`
	} `yaml:"backup"`

	Reminders struct {
		Enabled bool `yaml:"enabled"`
		Hour    int  `yaml:"hour"`
	} `yaml:"reminders"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Admins []int64 `yaml:"admins"`

	Photographers []PhotographerEntry `yaml:"photographers"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/fotobook.db"
	}
	if cfg.Media.Dir == "" {
		cfg.Media.Dir = "data/portfolio"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "data/backups"
	}
	if len(cfg.Photographers) == 0 {
		return nil, fmt.Errorf("config: at least one photographer required")
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) SessionTimeout() time.Duration {
	if c.Session.TimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

func (c *Config) SessionSweepInterval() time.Duration {
	if c.Session.SweepSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Session.SweepSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) RatingTTL() time.Duration {
	if c.Redis.RatingTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.RatingTTLSeconds) * time.Second
}
