package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Train and apply the chunk quality classifier",
}

var qualityTrainCmd = &cobra.Command{
	Use:   "train [labels-file]",
	Short: "Train the quality classifier on labelled chunks",
	Long: `Trains the quality classifier from a JSON file containing labelled
chunks and persists the fitted model. The file holds an array of
objects: [{"chunk_id": "...", "label": "high|medium|low"}, ...].`,
	Args: cobra.ExactArgs(1),
	RunE: runQualityTrain,
}

var qualityPredictCmd = &cobra.Command{
	Use:   "predict [chunk-id...]",
	Short: "Assess chunk quality with the trained classifier",
	Long: `Predicts a quality label and confidence for the given chunks, or
for every indexed chunk when no ids are given. Requires a trained
model; train one first with 'corpora quality train'.`,
	RunE: runQualityPredict,
}

func init() {
	qualityCmd.AddCommand(qualityTrainCmd)
	qualityCmd.AddCommand(qualityPredictCmd)
	rootCmd.AddCommand(qualityCmd)
}

// labelledChunk is the on-disk shape of one training sample.
type labelledChunk struct {
	ChunkID string `json:"chunk_id"`
	Label   string `json:"label"`
}

func runQualityTrain(cmd *cobra.Command, args []string) error {
	if qualityService == nil {
		return errors.New("quality service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read labels file: %w", err)
	}

	var labelled []labelledChunk
	if err := json.Unmarshal(data, &labelled); err != nil {
		return fmt.Errorf("failed to parse labels file: %w", err)
	}

	samples := make([]domain.QualitySample, len(labelled))
	for i, l := range labelled {
		samples[i] = domain.QualitySample{ChunkID: l.ChunkID, Label: l.Label}
	}

	ctx := context.Background()

	metrics, err := qualityService.Train(ctx, samples)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	cmd.Printf("Quality classifier trained on %d samples.\n\n", metrics.Samples)
	cmd.Printf("  Accuracy:  %.3f\n", metrics.Accuracy)
	cmd.Printf("  Precision: %.3f\n", metrics.Precision)
	cmd.Printf("  Recall:    %.3f\n", metrics.Recall)
	cmd.Printf("  F1:        %.3f\n", metrics.F1)
	return nil
}

func runQualityPredict(cmd *cobra.Command, args []string) error {
	if qualityService == nil {
		return errors.New("quality service not configured")
	}

	ctx := context.Background()

	assessments, err := qualityService.Predict(ctx, args)
	if err != nil {
		if errors.Is(err, domain.ErrModelNotTrained) {
			return errors.New("no trained model found, run 'corpora quality train' first")
		}
		return fmt.Errorf("prediction failed: %w", err)
	}

	if len(assessments) == 0 {
		cmd.Println("No chunks to assess.")
		return nil
	}

	cmd.Printf("Assessed %d chunks:\n\n", len(assessments))
	for i := range assessments {
		cmd.Printf("  %s: %s (%.2f confidence, %d chars)\n",
			assessments[i].ChunkID,
			assessments[i].Label,
			assessments[i].Confidence,
			assessments[i].ContentLength)
	}

	return nil
}
