package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	anomalyContamination float64
	anomalyShowAll       bool
)

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Flag anomalous chunks across the corpus",
	Long: `Fits an anomaly detection model over all indexed chunk embeddings
and flags the chunks that score above the contamination threshold.`,
	Args: cobra.NoArgs,
	RunE: runAnomaly,
}

func init() {
	anomalyCmd.Flags().Float64VarP(&anomalyContamination, "contamination", "c", 0.1, "expected anomalous fraction, in (0, 0.5]")
	anomalyCmd.Flags().BoolVarP(&anomalyShowAll, "all", "a", false, "show all chunks, not only flagged ones")
	rootCmd.AddCommand(anomalyCmd)
}

func runAnomaly(cmd *cobra.Command, _ []string) error {
	if anomalyService == nil {
		return errors.New("anomaly service not configured")
	}

	ctx := context.Background()

	results, err := anomalyService.Detect(ctx, anomalyContamination)
	if err != nil {
		return fmt.Errorf("anomaly detection failed: %w", err)
	}

	flagged := 0
	for i := range results {
		if results[i].IsAnomaly {
			flagged++
		}
	}

	cmd.Printf("Analyzed %d chunks, %d flagged as anomalous.\n\n", len(results), flagged)

	for i := range results {
		if !results[i].IsAnomaly && !anomalyShowAll {
			continue
		}
		marker := " "
		if results[i].IsAnomaly {
			marker = "!"
		}
		cmd.Printf("  %s %s (score %.4f)\n", marker, results[i].ChunkID, results[i].Score)
		cmd.Printf("      %s\n", results[i].Preview)
	}

	return nil
}
