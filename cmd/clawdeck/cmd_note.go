package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/state"
	"github.com/user/clawdeck/internal/types"
)

var (
	noteProjectID string
	noteProactive bool
	noteColumn    string
	noteAgentID   string
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Capture and manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Capture a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, notes, _ := buildStores(cfg)

		now := time.Now()
		n := &types.Note{
			ID:        types.NewNoteID(),
			Content:   strings.Join(args, " "),
			ProjectID: types.ProjectID(noteProjectID),
			Status:    "open",
			Proactive: noteProactive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := notes.Create(cmd.Context(), n); err != nil {
			return err
		}
		fmt.Printf("Noted: %s\n", n.ID)
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, notes, _ := buildStores(cfg)

		list, err := notes.List(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([]table.Row, 0, len(list))
		for _, n := range list {
			proactive := ""
			if n.Proactive {
				proactive = "yes"
			}
			rows = append(rows, table.Row{n.ID, n.Status, proactive, n.Content})
		}
		renderTable(table.Row{"ID", "Status", "Proactive", "Content"}, rows)
		return nil
	},
}

var noteDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a note done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, notes, _ := buildStores(cfg)

		return notes.SetStatus(cmd.Context(), types.NoteID(args[0]), "done")
	},
}

var noteProactiveCmd = &cobra.Command{
	Use:   "proactive [id] [on|off]",
	Short: "Toggle proactive follow-up for a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, notes, _ := buildStores(cfg)

		switch args[1] {
		case "on":
			return notes.SetProactive(cmd.Context(), types.NoteID(args[0]), true)
		case "off":
			return notes.SetProactive(cmd.Context(), types.NoteID(args[0]), false)
		default:
			return fmt.Errorf("expected on or off, got %q", args[1])
		}
	},
}

var notePromoteCmd = &cobra.Command{
	Use:   "promote [id] [title]",
	Short: "Promote a note to a board item and close it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, _, notes, items := buildStores(cfg)

		title := ""
		if len(args) == 2 {
			title = args[1]
		}
		item, err := state.PromoteNote(cmd.Context(), notes, items,
			types.NoteID(args[0]), title, types.ProjectID(noteProjectID), noteColumn)
		if err != nil {
			return err
		}
		fmt.Printf("Promoted to %s in %s\n", item.ID, item.Column)
		return nil
	},
}

var noteConvertCmd = &cobra.Command{
	Use:   "convert [id] [name]",
	Short: "Spin a note off into its own thread",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		threads, _, notes, _ := buildStores(cfg)

		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		th, err := state.ConvertNoteToThread(cmd.Context(), notes, threads,
			types.NoteID(args[0]), name, noteAgentID, types.ProjectID(noteProjectID))
		if err != nil {
			return err
		}
		fmt.Printf("Created thread %s (session %s)\n", th.ID, th.SessionID)
		return nil
	},
}

func init() {
	noteAddCmd.Flags().StringVar(&noteProjectID, "project", "", "project ID to attach the note to")
	noteAddCmd.Flags().BoolVar(&noteProactive, "proactive", false, "schedule a proactive follow-up")
	notePromoteCmd.Flags().StringVar(&noteProjectID, "project", "", "project ID for the board item")
	notePromoteCmd.Flags().StringVar(&noteColumn, "column", "", "board column (default backlog)")
	noteConvertCmd.Flags().StringVar(&noteProjectID, "project", "", "project ID for the new thread")
	noteConvertCmd.Flags().StringVar(&noteAgentID, "agent", "main", "agent ID for the new thread")
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteDoneCmd)
	noteCmd.AddCommand(noteProactiveCmd)
	noteCmd.AddCommand(notePromoteCmd)
	noteCmd.AddCommand(noteConvertCmd)
	rootCmd.AddCommand(noteCmd)
}
