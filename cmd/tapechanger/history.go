package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	historyCommand string
	historyLimit   int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded changer operations",
		Long: `Show recent changer operations from the history database. Requires
db_path to be set in the configuration file.`,
		Example: `  tapechanger history
  tapechanger history --command unload --limit 50`,
		RunE: historyRun,
	}

	cmd.Flags().StringVar(&historyCommand, "command", "", "only show operations for this command")
	cmd.Flags().IntVar(&historyLimit, "limit", 25, "maximum number of operations to show")

	return cmd
}

func historyRun(cmd *cobra.Command, args []string) error {
	if globalStore == nil {
		return fmt.Errorf("operation history is not enabled (set db_path in the config file)")
	}

	ops, err := globalStore.ListOperations(historyCommand, historyLimit)
	if err != nil {
		return fmt.Errorf("reading operation history: %w", err)
	}

	if len(ops) == 0 {
		fmt.Println("No operations recorded")
		return nil
	}

	fmt.Printf("%-19s %-8s %-6s %-5s %-12s %-8s %s\n",
		"Time", "Command", "Slot", "Drive", "Volume", "Status", "Job")
	fmt.Println(strings.Repeat("-", 78))

	for _, op := range ops {
		job := op.JobName
		if job == "" {
			job = op.JobID
		}
		fmt.Printf("%-19s %-8s %-6d %-5d %-12s %-8s %s\n",
			op.StartTime.Format("2006-01-02 15:04:05"),
			op.Command,
			op.Slot,
			op.DriveIndex,
			op.Volume,
			op.Status,
			job,
		)
	}

	return nil
}
