package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixit-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driving"
)

var (
	ingestStrict bool
	ingestWatch  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [root]",
	Short: "Ingest repair manuals into the search index",
	Long: `Scans the given directory tree for PDF manuals and runs the
ingestion pipeline: parse, chunk, embed, and upsert into the vector
index.

Runs are resumable. Manuals already ingested are skipped by content
digest, so interrupting and rerunning only does the remaining work.
Directory layout determines categorisation: root/<appliance>/<brand>/.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestStrict, "strict", false, "stop at the first document failure")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new manuals")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestOrchestrator == nil {
		return fmt.Errorf("%w: ingest service not configured, set embedding and pinecone keys first", domain.ErrMissingConfig)
	}

	// The flag wins; ingest.strict in the config sets the default.
	strict := ingestStrict
	if !strict && configStore != nil {
		strict = configStore.GetBool(file.KeyIngestStrict)
	}

	opts := driving.IngestOptions{
		Root:   args[0],
		Strict: strict,
	}
	ctx := context.Background()

	if ingestWatch {
		cmd.Printf("Watching %s for manuals. Ctrl-C to stop.\n", opts.Root)
		return ingestOrchestrator.Watch(ctx, opts)
	}

	cmd.Printf("Ingesting manuals from %s...\n", opts.Root)
	report, err := ingestOrchestrator.Ingest(ctx, opts)
	if report != nil {
		printIngestReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

func printIngestReport(cmd *cobra.Command, report *driving.IngestReport) {
	cmd.Println()
	cmd.Printf("Run %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
	cmd.Printf("  Scanned:   %d\n", report.Scanned)
	cmd.Printf("  Completed: %d\n", report.Completed)
	cmd.Printf("  Skipped:   %d\n", report.Skipped)
	cmd.Printf("  Failed:    %d\n", report.Failed)

	if len(report.Failures) > 0 {
		cmd.Println()
		cmd.Println("Failures:")
		for _, failure := range report.Failures {
			cmd.Printf("  %s\n    %s\n", failure.Path, failure.Reason)
		}
	}
}
