package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/clawdeck/internal/sshlink"
)

type Config struct {
	DataDir    string         `json:"data_dir"`
	LogDir     string         `json:"log_dir"`
	LogLevel   string         `json:"log_level"`
	RemoteMode bool           `json:"remote_mode"`
	SSH        sshlink.Config `json:"ssh"`
	Telegram   struct {
		Token  string `json:"token"`
		ChatID int64  `json:"chat_id"`
	} `json:"telegram"`
	Vault struct {
		Path string `json:"path"`
	} `json:"vault"`
	Proactive struct {
		IntervalMinutes int `json:"interval_minutes"`
	} `json:"proactive"`
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".clawdeck", "config.json")
}

// Load reads the config file, writing defaults on first use, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	home := os.Getenv("HOME")
	cfg := &Config{
		DataDir:  filepath.Join(home, ".clawdeck"),
		LogDir:   filepath.Join(home, ".openclaw"),
		LogLevel: "info",
		SSH:      sshlink.DefaultConfig(),
	}
	cfg.Proactive.IntervalMinutes = 240

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Env overrides (highest precedence)
	if host := os.Getenv("CLAWDECK_SSH_HOST"); host != "" {
		cfg.SSH.Host = host
	}
	if user := os.Getenv("CLAWDECK_SSH_USER"); user != "" {
		cfg.SSH.User = user
	}
	if port := os.Getenv("CLAWDECK_SSH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.SSH.Port = p
		}
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}

	return cfg, nil
}

// Save writes the config back to disk.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func writeDefaults(path string, cfg *Config) error {
	return Save(path, cfg)
}
