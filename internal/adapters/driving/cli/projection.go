package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

var projectionJSON bool

var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Project all chunk embeddings into two dimensions",
	Long: `Recomputes a 2-D projection of every indexed embedding for
visualisation. Each point carries the chunk's last cluster assignment,
or -1 if the corpus was never clustered.`,
	Args: cobra.NoArgs,
	RunE: runProjection,
}

func init() {
	projectionCmd.Flags().BoolVar(&projectionJSON, "json", false, "output points as JSON")
	rootCmd.AddCommand(projectionCmd)
}

func runProjection(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	ctx := context.Background()

	points, err := statusService.Projection(ctx)
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}

	if projectionJSON {
		return outputProjectionJSON(cmd, points)
	}

	if len(points) == 0 {
		cmd.Println("No chunks to project.")
		return nil
	}

	cmd.Printf("Projected %d chunks:\n\n", len(points))
	for i := range points {
		cmd.Printf("  %s (%.3f, %.3f) cluster %d\n",
			points[i].ChunkID, points[i].X, points[i].Y, points[i].ClusterID)
	}

	return nil
}

func outputProjectionJSON(cmd *cobra.Command, points []domain.ProjectionPoint) error {
	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal points: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
