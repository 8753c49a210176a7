// Command corpora is the document knowledge-base CLI. It wires the
// storage, embedding, extraction and model adapters into the core
// services and hands them to the command tree.
package main

import (
	"fmt"
	"os"

	configfile "github.com/corpora-dev/corpora/internal/adapters/driven/config/file"
	"github.com/corpora-dev/corpora/internal/adapters/driven/embedding/ollama"
	"github.com/corpora-dev/corpora/internal/adapters/driven/embedding/openai"
	"github.com/corpora-dev/corpora/internal/adapters/driven/extract"
	"github.com/corpora-dev/corpora/internal/adapters/driven/ml/centroid"
	"github.com/corpora-dev/corpora/internal/adapters/driven/ml/iforest"
	"github.com/corpora-dev/corpora/internal/adapters/driven/ml/kmeans"
	modelfile "github.com/corpora-dev/corpora/internal/adapters/driven/modelstore/file"
	"github.com/corpora-dev/corpora/internal/adapters/driven/storage/sqlite"
	"github.com/corpora-dev/corpora/internal/adapters/driving/cli"
	"github.com/corpora-dev/corpora/internal/chunker"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	models, err := modelfile.NewModelStore(cfg.GetString("models.dir"))
	if err != nil {
		return fmt.Errorf("failed to open model store: %w", err)
	}

	embeddingService, err := buildEmbeddingService(cfg)
	if err != nil {
		return err
	}

	chunks, err := buildChunker(cfg)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	docStore := store.DocumentStore()
	index := store.VectorIndex()
	extractor := extract.NewFactory()
	clusterer := kmeans.New()
	detector := iforest.New()
	classifier := centroid.New()

	cli.Wire(
		services.NewIngestOrchestrator(docStore, index, chunks, embeddingService, extractor),
		services.NewSearchService(index, embeddingService),
		services.NewClusteringService(index, clusterer, models),
		services.NewAnomalyService(index, detector, models),
		services.NewQualityService(index, classifier, models),
		services.NewStatusService(docStore, index, clusterer),
	)

	return cli.Execute()
}

// buildEmbeddingService picks the embedding provider from config.
// Defaults to a local Ollama instance; "openai" switches to the OpenAI
// API with the key from config or the OPENAI_API_KEY environment
// variable.
func buildEmbeddingService(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString("embedding.provider"); provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	case "openai":
		apiKey := cfg.GetString("embedding.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            apiKey,
			BaseURL:           cfg.GetString("embedding.base_url"),
			Model:             cfg.GetString("embedding.model"),
			RequestsPerSecond: cfg.GetFloat("embedding.requests_per_second"),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", provider)
	}
}

func buildChunker(cfg driven.ConfigStore) (*chunker.Chunker, error) {
	var opts []chunker.Option
	if size := cfg.GetInt("chunk.window_size"); size > 0 {
		opts = append(opts, chunker.WithWindowSize(size))
	}
	if overlap := cfg.GetInt("chunk.overlap"); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.New(opts...)
}
