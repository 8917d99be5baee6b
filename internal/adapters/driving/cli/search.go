package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

var (
	searchLimit     int
	searchAppliance string
	searchBrand     string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested repair manuals",
	Long: `Answers a repair question against the ingested manuals.
Candidates come from dense vector retrieval and are reordered by a
cross-encoder reranker before the top results are returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().StringVar(&searchAppliance, "appliance-type", "", "restrict to one appliance category")
	searchCmd.Flags().StringVar(&searchBrand, "brand", "", "restrict to one brand")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return fmt.Errorf("%w: retrieval service not configured, set embedding, pinecone, and reranker keys first", domain.ErrMissingConfig)
	}

	opts := domain.SearchOptions{
		TopK:          searchLimit,
		ApplianceType: searchAppliance,
		Brand:         searchBrand,
	}

	results, err := retrievalService.Search(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s, page %d (%.2f)\n",
			i+1, results[i].Source, results[i].PageNumber, results[i].Score)
		if results[i].ApplianceType != "" {
			cmd.Printf("      Appliance: %s\n", results[i].ApplianceType)
		}
		if len(results[i].PartNumbers) > 0 {
			cmd.Printf("      Parts: %v\n", results[i].PartNumbers)
		}
		cmd.Printf("      %s\n", results[i].Summary)
		cmd.Println()
	}
	return nil
}
