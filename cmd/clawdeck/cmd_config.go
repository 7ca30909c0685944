package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config value (e.g. ssh.host, log_level, vault.path)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := applySetting(cfg, args[0], args[1]); err != nil {
			return err
		}
		return config.Save(configPath, cfg)
	},
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "data_dir":
		cfg.DataDir = value
	case "log_dir":
		cfg.LogDir = value
	case "log_level":
		cfg.LogLevel = value
	case "remote_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("remote_mode: %w", err)
		}
		cfg.RemoteMode = b
	case "ssh.host":
		cfg.SSH.Host = value
	case "ssh.port":
		p, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ssh.port: %w", err)
		}
		cfg.SSH.Port = p
	case "ssh.user":
		cfg.SSH.User = value
	case "ssh.key_path":
		cfg.SSH.KeyPath = value
	case "telegram.token":
		cfg.Telegram.Token = value
	case "telegram.chat_id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("telegram.chat_id: %w", err)
		}
		cfg.Telegram.ChatID = id
	case "vault.path":
		cfg.Vault.Path = value
	case "proactive.interval_minutes":
		m, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("proactive.interval_minutes: %w", err)
		}
		cfg.Proactive.IntervalMinutes = m
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
