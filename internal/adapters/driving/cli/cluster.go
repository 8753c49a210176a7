package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clusterK int

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group indexed chunks into clusters",
	Long: `Fits a clustering model over all indexed chunk embeddings, writes
the cluster assignments back onto the chunks and persists the model.`,
	Args: cobra.NoArgs,
	RunE: runCluster,
}

func init() {
	clusterCmd.Flags().IntVarP(&clusterK, "clusters", "k", 5, "number of clusters")
	rootCmd.AddCommand(clusterCmd)
}

func runCluster(cmd *cobra.Command, _ []string) error {
	if clusteringService == nil {
		return errors.New("clustering service not configured")
	}

	ctx := context.Background()

	cmd.Printf("Clustering corpus into %d clusters...\n\n", clusterK)

	clusters, err := clusteringService.Cluster(ctx, clusterK)
	if err != nil {
		return fmt.Errorf("clustering failed: %w", err)
	}

	for i := range clusters {
		cmd.Printf("  Cluster %d (%d chunks)\n", clusters[i].ID, clusters[i].Size)
		if len(clusters[i].TopTerms) > 0 {
			cmd.Printf("    Terms: %s\n", strings.Join(clusters[i].TopTerms, ", "))
		}
		for _, rep := range clusters[i].Representative {
			cmd.Printf("    - %s\n", rep)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d clusters\n", len(clusters))
	return nil
}
