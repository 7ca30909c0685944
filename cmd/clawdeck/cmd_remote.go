package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/config"
	"github.com/user/clawdeck/internal/sshlink"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control the SSH link to the remote openclaw host",
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show remote mode and SSH target",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		mode := "off"
		if cfg.RemoteMode {
			mode = "on"
		}
		fmt.Printf("Remote mode: %s\n", mode)
		fmt.Printf("Target: %s@%s:%d (key %s)\n", cfg.SSH.User, cfg.SSH.Host, cfg.SSH.Port, cfg.SSH.KeyPath)
		return nil
	},
}

var remoteTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Connect, run a probe command, and report the remote hostname",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		link := sshlink.NewLink(cfg.SSH)
		out, err := link.TestConnection()
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		defer link.Disconnect()
		fmt.Printf("OK: %s\n", out)
		return nil
	},
}

var remoteOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable remote mode",
	RunE:  func(cmd *cobra.Command, args []string) error { return setRemoteMode(true) },
}

var remoteOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable remote mode",
	RunE:  func(cmd *cobra.Command, args []string) error { return setRemoteMode(false) },
}

func setRemoteMode(enabled bool) error {
	cfg := loadConfig()
	cfg.RemoteMode = enabled
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}
	if enabled {
		fmt.Println("Remote mode enabled")
	} else {
		fmt.Println("Remote mode disabled")
	}
	return nil
}

func init() {
	remoteCmd.AddCommand(remoteStatusCmd)
	remoteCmd.AddCommand(remoteTestCmd)
	remoteCmd.AddCommand(remoteOnCmd)
	remoteCmd.AddCommand(remoteOffCmd)
	rootCmd.AddCommand(remoteCmd)
}
