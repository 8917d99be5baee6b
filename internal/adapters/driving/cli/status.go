package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ingestion progress",
	Long: `Shows the per-document checkpoint log: how many manuals are
completed, failed, or were interrupted mid-ingest.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if stateStore == nil {
		return errors.New("state store not configured")
	}

	entries, err := stateStore.All(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read ingest state: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No ingestion runs recorded yet.")
		return nil
	}

	counts := map[domain.IngestStatus]int{}
	for _, entry := range entries {
		counts[entry.Status]++
	}

	cmd.Printf("Tracked manuals: %d\n", len(entries))
	cmd.Printf("  Completed:  %d\n", counts[domain.StatusCompleted])
	cmd.Printf("  Processing: %d\n", counts[domain.StatusProcessing])
	cmd.Printf("  Failed:     %d\n", counts[domain.StatusFailed])

	var failed []string
	for digest, entry := range entries {
		if entry.Status == domain.StatusFailed {
			failed = append(failed, digest)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		cmd.Println()
		cmd.Println("Failed manuals (retried on next ingest):")
		for _, digest := range failed {
			entry := entries[digest]
			cmd.Printf("  %s (%s)\n    %s\n", entry.Filename, digest, entry.Error)
		}
	}
	return nil
}
