package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/vault"
)

var vaultPath string

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Sync projects from an Obsidian vault",
}

var vaultSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import active vault projects into the project store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, projects, _, _ := buildStores(cfg)

		path := vaultPath
		if path == "" {
			path = cfg.Vault.Path
		}
		if path == "" {
			return fmt.Errorf("no vault path: set vault.path in config or pass --path")
		}

		result, err := vault.Sync(cmd.Context(), projects, path)
		if err != nil {
			return err
		}
		fmt.Printf("Synced: %d created, %d updated, %d unchanged\n",
			result.Created, result.Updated, result.Skipped)
		for _, e := range result.Errors {
			fmt.Printf("  warning: %s\n", e)
		}
		return nil
	},
}

func init() {
	vaultSyncCmd.Flags().StringVar(&vaultPath, "path", "", "active projects directory (overrides config)")
	vaultCmd.AddCommand(vaultSyncCmd)
	rootCmd.AddCommand(vaultCmd)
}
