package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Upstream struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`
	Storage struct {
		Backend string `yaml:"backend"` // sqlite (default), redis or memory
		SQLite  struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	Categories struct {
		TTL string `yaml:"ttl"`
	} `yaml:"categories"`
	Quiz struct {
		Defaults struct {
			Category      string `yaml:"category"`
			Difficulty    string `yaml:"difficulty"`
			Type          string `yaml:"type"`
			TimerMinutes  int    `yaml:"timer_minutes"`
			QuestionCount int    `yaml:"question_count"`
		} `yaml:"defaults"`
	} `yaml:"quiz"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	cfg := Config{}
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLite.Path = "quiz.db"
	cfg.Quiz.Defaults.Category = "random"
	cfg.Quiz.Defaults.Difficulty = "random"
	cfg.Quiz.Defaults.Type = "random"
	cfg.Quiz.Defaults.TimerMinutes = 10
	cfg.Quiz.Defaults.QuestionCount = 10
	return cfg
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
