// Package cli implements the fixit command line interface.
// Commands hold no business logic; they translate flags and arguments
// into calls on the driving ports injected by main.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixit-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute runs. Commands check for
// nil and fail with a clear message instead of panicking.
var (
	ingestOrchestrator driving.IngestOrchestrator
	retrievalService   driving.RetrievalService
	documentStore      driven.DocumentStore
	stateStore         driven.IngestStateStore
	configStore        driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "fixit",
	Short: "Search appliance repair manuals",
	Long: `Fixit ingests PDF appliance repair manuals into a hybrid search
index and answers repair questions against them.

Manuals are parsed, chunked, embedded, and upserted into a remote
vector index. Queries combine dense retrieval with cross-encoder
reranking.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands depend on.
type Services struct {
	Ingest    driving.IngestOrchestrator
	Retrieval driving.RetrievalService
	Documents driven.DocumentStore
	States    driven.IngestStateStore
	Config    driven.ConfigStore
}

// SetServices injects service implementations. Must be called before
// Execute.
func SetServices(s Services) {
	ingestOrchestrator = s.Ingest
	retrievalService = s.Retrieval
	documentStore = s.Documents
	stateStore = s.States
	configStore = s.Config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
