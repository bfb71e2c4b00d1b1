// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savagelysubtle/transmute/internal/history"
	"github.com/savagelysubtle/transmute/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded batch conversion runs",
	Long: `History lists batch runs recorded in the local SQLite database. Recording
happens automatically when history.dir is configured. Use --export to write
the recent runs (with per-file results) as YAML.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	export, _ := cmd.Flags().GetBool("export")

	cfg := appConfig()
	if cfg.History.Dir == "" {
		return types.Validationf("history is not configured: set history.dir in the config file")
	}

	store, err := history.Open(cfg.History.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if export {
		return store.ExportYAML(ctx, limit, os.Stdout)
	}

	records, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded batches.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-12s  %-20s  %-6s  %-6s  %-6s  %s\n",
		"ID", "Type", "Started", "Files", "OK", "Failed", "Time")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-6d  %-12s  %-20s  %-6d  %-6d  %-6d  %.2fs\n",
			r.ID, r.ConversionType, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.TotalFiles, r.Successful, r.Failed, r.TotalTime)
	}

	fmt.Fprintf(os.Stdout, "\n%d batches\n", len(records))
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of batches to show")
	historyCmd.Flags().Bool("export", false, "write recent batches as YAML to stdout")

	rootCmd.AddCommand(historyCmd)
}
