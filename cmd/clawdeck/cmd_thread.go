package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/types"
)

var (
	threadProjectID string
	threadAgentID   string
)

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Manage conversation threads",
}

var threadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		threads, _, _, _ := buildStores(cfg)

		list, err := threads.List(cmd.Context(), types.ProjectID(threadProjectID))
		if err != nil {
			return err
		}
		rows := make([]table.Row, 0, len(list))
		for _, th := range list {
			last := "-"
			if th.LastMessageAt != nil {
				last = th.LastMessageAt.Format(time.RFC3339)
			}
			rows = append(rows, table.Row{th.ID, th.Name, th.AgentID, th.SessionID, last})
		}
		renderTable(table.Row{"ID", "Name", "Agent", "Session", "Last Message"}, rows)
		return nil
	},
}

var threadNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a thread with a fresh session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		threads, _, _, _ := buildStores(cfg)

		name := "New thread"
		if len(args) == 1 {
			name = args[0]
		}
		now := time.Now()
		th := &types.Thread{
			ID:        types.NewThreadID(),
			ProjectID: types.ProjectID(threadProjectID),
			Name:      name,
			AgentID:   threadAgentID,
			SessionID: types.NewSessionID(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := threads.Create(cmd.Context(), th); err != nil {
			return err
		}
		fmt.Printf("Created thread %s (session %s)\n", th.ID, th.SessionID)
		return nil
	},
}

var threadRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a thread",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		threads, _, _, _ := buildStores(cfg)

		return threads.Rename(cmd.Context(), types.ThreadID(args[0]), args[1])
	},
}

var threadRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a thread (the session log stays on disk)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		threads, _, _, _ := buildStores(cfg)

		return threads.Delete(cmd.Context(), types.ThreadID(args[0]))
	},
}

func init() {
	threadCmd.PersistentFlags().StringVar(&threadProjectID, "project", "", "filter or assign by project ID")
	threadNewCmd.Flags().StringVar(&threadAgentID, "agent", "main", "agent ID for the new thread")
	threadCmd.AddCommand(threadListCmd)
	threadCmd.AddCommand(threadNewCmd)
	threadCmd.AddCommand(threadRenameCmd)
	threadCmd.AddCommand(threadRmCmd)
	rootCmd.AddCommand(threadCmd)
}
