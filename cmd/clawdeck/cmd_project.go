package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		_, projects, _, _ := buildStores(cfg)

		list, err := projects.List(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([]table.Row, 0, len(list))
		for _, p := range list {
			rows = append(rows, table.Row{p.ID, p.Name, p.Color, p.Source, p.Description})
		}
		renderTable(table.Row{"ID", "Name", "Color", "Source", "Description"}, rows)
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	rootCmd.AddCommand(projectCmd)
}
