package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asap-static/asap/internal/audit"
	"github.com/asap-static/asap/internal/ui"
	"github.com/asap-static/asap/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logTag       string
	logFailed    bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logTag, "tag", "", "filter by site tag")
	logCmd.Flags().BoolVar(&logFailed, "failed", false, "show failed operations only")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logTag = ""
	logFailed = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View your deploy and destroy history",
	Long: `Displays the local history of deploy and destroy operations.

Examples:
  asap log                        # View full history
  asap log -n 10                  # Last 10 entries
  asap log --reverse              # Most recent first
  asap log --operation destroy    # Filter by operation
  asap log --tag my-app --failed  # Failed operations on one site
  asap log --json                 # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	result, err := workflows.Log(commandContext(cmd), workflows.LogOptions{
		History:    openHistory(),
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Tag:        logTag,
		FailedOnly: logFailed,
	})
	if err != nil {
		return reportFailure("Failed to read history: " + err.Error())
	}

	Logger.Debugf("Parsed %d entries from %s", result.TotalEntriesBeforeFilter, audit.LogPath())
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if logJSON {
		entries := result.Entries
		if entries == nil {
			entries = []audit.Entry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No history entries found.")
		} else {
			fmt.Println("No history entries found matching the filters.")
		}
		return nil
	}

	for _, e := range result.Entries {
		outcome := workflows.FormatOutcome(e)
		if e.OK {
			outcome = ui.Success.Sprint(outcome)
		} else {
			outcome = ui.Error.Sprint(outcome)
		}
		fmt.Printf("%-19s  %-8s  %-30s  %s\n", workflows.FormatDateTime(e.Timestamp), e.Operation, e.Tag, outcome)
	}
	return nil
}
