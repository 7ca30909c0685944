package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/chatlog"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect session logs on disk",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		logs := chatlog.NewStore(cfg.LogDir)

		keys, err := logs.ListSessions()
		if err != nil {
			return err
		}
		rows := make([]table.Row, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, table.Row{key.AgentID, key.SessionID, logs.Path(key)})
		}
		renderTable(table.Row{"Agent", "Session", "Path"}, rows)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	rootCmd.AddCommand(sessionCmd)
}
