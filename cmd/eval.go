package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/eval/dataset"
	"github.com/lehigh-university-libraries/shelfscan/internal/eval/metrics"
	"github.com/lehigh-university-libraries/shelfscan/internal/eval/results"
	"github.com/lehigh-university-libraries/shelfscan/internal/pipeline"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Identification accuracy evaluation tools",
		Long: `Evaluation tools for measuring identification accuracy against labeled
shelf photos.

A dataset is a JSONL or Parquet file of records with an image_path and the
list of books a person verified are on that shelf. Each image is run through
the identification pipeline and scored by fuzzy title matching.`,
	}

	cmd.AddCommand(newEvalRunCmd())

	return cmd
}

func newEvalRunCmd() *cobra.Command {
	var (
		datasetPath string
		sampleSize  int
		outputDir   string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the identification pipeline over a labeled dataset",
		Example: `  # Evaluate on the first 10 shelves of a dataset
  shelfscan eval run --dataset shelves.jsonl --sample 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := dataset.NewLoader(datasetPath).LoadSample(sampleSize)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("dataset %s contains no records", datasetPath)
			}

			client, closeClient, err := newVisionClient(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := closeClient(); err != nil {
					slog.Warn("Failed to close classification client", "err", err)
				}
			}()

			pipe := pipeline.New(client)
			baseDir := filepath.Dir(datasetPath)

			imageResults := make([]results.ImageResult, 0, len(records))
			for i, record := range records {
				slog.Info("Evaluating shelf", "image", record.ImagePath, "progress", fmt.Sprintf("%d/%d", i+1, len(records)))

				comparison, err := evalOne(cmd, pipe, baseDir, record, timeout)
				if err != nil {
					slog.Warn("Evaluation failed for image", "image", record.ImagePath, "error", err)
					imageResults = append(imageResults, results.ImageResult{ImagePath: record.ImagePath, Err: err})
					continue
				}

				slog.Info("Scored shelf",
					"image", record.ImagePath,
					"precision", fmt.Sprintf("%.2f", comparison.Precision),
					"recall", fmt.Sprintf("%.2f", comparison.Recall))
				imageResults = append(imageResults, results.ImageResult{ImagePath: record.ImagePath, Comparison: comparison})
			}

			provider := os.Getenv("SHELFSCAN_PROVIDER")
			if provider == "" {
				provider = "gemini"
			}
			model := os.Getenv("SHELFSCAN_MODEL")

			outputPath, err := results.SaveToYAML(outputDir, provider, model, datasetPath, imageResults)
			if err != nil {
				return err
			}

			slog.Info("Evaluation complete", "images", len(imageResults), "report", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to labeled dataset (.jsonl or .parquet)")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Evaluate at most this many records (0 = all)")
	cmd.Flags().StringVar(&outputDir, "output", "evals", "Directory for YAML reports")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Per-image wall-clock budget")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func evalOne(cmd *cobra.Command, pipe *pipeline.Pipeline, baseDir string, record dataset.ShelfRecord, timeout time.Duration) (*metrics.ListComparison, error) {
	imagePath := record.ImagePath
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(baseDir, imagePath)
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result, err := pipe.Identify(ctx, imageData)
	if err != nil {
		return nil, err
	}

	return metrics.CompareBookLists(result.Books, record.Books), nil
}
