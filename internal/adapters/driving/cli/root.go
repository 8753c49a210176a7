// Package cli implements the corpora command tree. Commands are thin:
// they parse flags, call a driving port and format the result. Services
// are injected once at startup via Wire.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/core/ports/driving"
	"github.com/corpora-dev/corpora/internal/logger"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// Services wired in by the composition root. Commands check for nil so
// a partially wired binary fails with a clear message instead of a
// panic.
var (
	ingestService     driving.IngestService
	searchService     driving.SearchService
	clusteringService driving.ClusteringService
	anomalyService    driving.AnomalyService
	qualityService    driving.QualityService
	statusService     driving.StatusService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Document knowledge-base with similarity search and corpus analytics",
	Long: `Corpora maintains a searchable knowledge base of uploaded documents.
Documents are split into overlapping chunks, embedded, and indexed for
similarity search. Corpus-wide analytics (clustering, anomaly detection,
quality classification) run over the indexed chunks.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Wire injects the services the commands depend on. Must be called
// before Execute.
func Wire(
	ingest driving.IngestService,
	search driving.SearchService,
	clustering driving.ClusteringService,
	anomaly driving.AnomalyService,
	quality driving.QualityService,
	status driving.StatusService,
) {
	ingestService = ingest
	searchService = search
	clusteringService = clustering
	anomalyService = anomaly
	qualityService = quality
	statusService = status
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
