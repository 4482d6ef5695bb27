package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL          string `yaml:"base_url"`
	Token            string `yaml:"token"`
	TypingIntervalMs int    `yaml:"typing_interval_ms"`
	ReplyMode        string `yaml:"reply_mode"`
	HistoryRoot      string `yaml:"history_root"`
	SpeakReplies     bool   `yaml:"speak_replies"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://127.0.0.1:8000",
		TypingIntervalMs: 50,
		ReplyMode:        string(ReplyText),
	}
}

// DefaultConfigPath is ~/.config/chatcli/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "chatcli", "config.yaml")
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:8000"
	}
	if cfg.TypingIntervalMs <= 0 {
		cfg.TypingIntervalMs = 50
	}
	if cfg.TypingIntervalMs < 10 {
		cfg.TypingIntervalMs = 10
	}
	if cfg.TypingIntervalMs > 500 {
		cfg.TypingIntervalMs = 500
	}
	if _, ok := ParseReplyMode(cfg.ReplyMode); !ok {
		cfg.ReplyMode = string(ReplyText)
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// TypingInterval is the delay between reveal ticks.
func (c Config) TypingInterval() time.Duration {
	return time.Duration(c.TypingIntervalMs) * time.Millisecond
}
