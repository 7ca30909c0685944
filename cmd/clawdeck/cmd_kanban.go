package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/state"
	"github.com/user/clawdeck/internal/types"
)

var (
	kanbanProjectID   string
	kanbanColumn      string
	kanbanDescription string
	kanbanPosition    int
)

var kanbanCmd = &cobra.Command{
	Use:   "kanban",
	Short: "Manage the task board",
}

var kanbanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active board items by column",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, _, items := buildStores(cfg)

		list, err := items.List(cmd.Context(), types.ProjectID(kanbanProjectID))
		if err != nil {
			return err
		}
		rows := make([]table.Row, 0, len(list))
		for _, item := range list {
			rows = append(rows, table.Row{item.ID, item.Column, item.Position, item.Title, item.ProjectID})
		}
		renderTable(table.Row{"ID", "Column", "Pos", "Title", "Project"}, rows)
		return nil
	},
}

var kanbanAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a board item",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, _, items := buildStores(cfg)

		item := &types.KanbanItem{
			ID:          types.NewKanbanItemID(),
			ProjectID:   types.ProjectID(kanbanProjectID),
			Title:       strings.Join(args, " "),
			Description: kanbanDescription,
			Column:      kanbanColumn,
		}
		if err := items.Create(cmd.Context(), item); err != nil {
			return err
		}
		fmt.Printf("Added %s to %s\n", item.ID, item.Column)
		return nil
	},
}

var kanbanMoveCmd = &cobra.Command{
	Use:   "move [id] [column]",
	Short: "Move an item to a column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, _, items := buildStores(cfg)

		return items.Move(cmd.Context(), types.KanbanItemID(args[0]), args[1], kanbanPosition)
	},
}

var kanbanDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark an item done, hiding it from the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, _, items := buildStores(cfg)

		return items.SetStatus(cmd.Context(), types.KanbanItemID(args[0]), state.KanbanStatusDone)
	},
}

var kanbanRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a board item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, _, items := buildStores(cfg)

		return items.Delete(cmd.Context(), types.KanbanItemID(args[0]))
	},
}

func init() {
	kanbanCmd.PersistentFlags().StringVar(&kanbanProjectID, "project", "", "filter or assign by project ID")
	kanbanAddCmd.Flags().StringVar(&kanbanColumn, "column", state.KanbanColumnBacklog, "board column")
	kanbanAddCmd.Flags().StringVar(&kanbanDescription, "desc", "", "item description")
	kanbanMoveCmd.Flags().IntVar(&kanbanPosition, "position", 0, "position within the column")
	kanbanCmd.AddCommand(kanbanListCmd)
	kanbanCmd.AddCommand(kanbanAddCmd)
	kanbanCmd.AddCommand(kanbanMoveCmd)
	kanbanCmd.AddCommand(kanbanDoneCmd)
	kanbanCmd.AddCommand(kanbanRmCmd)
	rootCmd.AddCommand(kanbanCmd)
}
