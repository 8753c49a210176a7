package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	ctx := context.Background()

	status, err := statusService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Println("Corpus status:")
	cmd.Println()
	cmd.Printf("  Documents: %d\n", status.TotalDocuments)
	cmd.Printf("  Chunks:    %d\n", status.TotalChunks)
	cmd.Printf("  Avg chunks/document: %.1f\n", status.AvgChunksPerDocument)

	if len(status.ByStatus) > 0 {
		cmd.Println("\n  By status:")
		for _, s := range []domain.ProcessingStatus{
			domain.StatusPending,
			domain.StatusProcessing,
			domain.StatusCompleted,
			domain.StatusFailed,
		} {
			if n, ok := status.ByStatus[s]; ok {
				cmd.Printf("    %s: %d\n", s, n)
			}
		}
	}

	return nil
}
