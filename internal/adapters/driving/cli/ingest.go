package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// ingestType overrides extension-based type detection.
var ingestType string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Extracts text from the file, splits it into overlapping chunks,
embeds them and adds them to the similarity index. The document type is
inferred from the file extension unless --type is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "", "document type (pdf or txt), inferred from extension by default")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	filename := filepath.Base(path)

	docType := domain.DocumentType(ingestType)
	if ingestType == "" {
		docType = domain.DocumentType(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	}

	ctx := context.Background()

	cmd.Printf("Ingesting %s...\n", filename)

	doc, err := ingestService.Upload(ctx, path, docType, filename)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	cmd.Printf("Document %s ingested.\n\n", doc.ID)
	cmd.Printf("  Filename: %s\n", doc.Filename)
	cmd.Printf("  Type:     %s\n", doc.Type)
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Chunks:   %d\n", doc.Stats.ChunksCount)
	return nil
}
