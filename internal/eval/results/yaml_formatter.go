package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalResult represents a single shelf photo's evaluation result
type EvalResult struct {
	ImagePath    string   `yaml:"imagepath"`
	Expected     int      `yaml:"expected"`
	Identified   int      `yaml:"identified"`
	TitleMatches int      `yaml:"titlematches"`
	Precision    float64  `yaml:"precision"`
	Recall       float64  `yaml:"recall"`
	F1           float64  `yaml:"f1"`
	MissedTitles []string `yaml:"missedtitles,omitempty"`
	ExtraTitles  []string `yaml:"extratitles,omitempty"`
	Error        string   `yaml:"error,omitempty"`
}

// EvalSummary aggregates scores across the whole run
type EvalSummary struct {
	Images        int     `yaml:"images"`
	Failures      int     `yaml:"failures"`
	MeanPrecision float64 `yaml:"meanprecision"`
	MeanRecall    float64 `yaml:"meanrecall"`
	MeanF1        float64 `yaml:"meanf1"`
}

// EvalSpec represents the complete evaluation report
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// ImageResult pairs one image with its comparison (or failure)
type ImageResult struct {
	ImagePath  string
	Comparison *metrics.ListComparison
	Err        error
}

// SaveToYAML writes the evaluation report to a timestamped file under outputDir
func SaveToYAML(outputDir, provider, model, datasetPath string, results []ImageResult) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    provider,
			Model:       model,
			DatasetPath: datasetPath,
			SampleSize:  len(results),
			Timestamp:   timestamp,
		},
		Results: make([]EvalResult, 0, len(results)),
	}

	scored := 0
	for _, r := range results {
		if r.Err != nil {
			spec.Summary.Failures++
			spec.Results = append(spec.Results, EvalResult{
				ImagePath: r.ImagePath,
				Error:     r.Err.Error(),
			})
			continue
		}

		scored++
		spec.Summary.MeanPrecision += r.Comparison.Precision
		spec.Summary.MeanRecall += r.Comparison.Recall
		spec.Summary.MeanF1 += r.Comparison.F1

		spec.Results = append(spec.Results, EvalResult{
			ImagePath:    r.ImagePath,
			Expected:     r.Comparison.Expected,
			Identified:   r.Comparison.Identified,
			TitleMatches: r.Comparison.TitleMatches,
			Precision:    r.Comparison.Precision,
			Recall:       r.Comparison.Recall,
			F1:           r.Comparison.F1,
			MissedTitles: r.Comparison.MissedTitles,
			ExtraTitles:  r.Comparison.ExtraTitles,
		})
	}

	spec.Summary.Images = len(results)
	if scored > 0 {
		spec.Summary.MeanPrecision /= float64(scored)
		spec.Summary.MeanRecall /= float64(scored)
		spec.Summary.MeanF1 /= float64(scored)
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal eval report: %w", err)
	}

	outputPath := filepath.Join(outputDir, fmt.Sprintf("eval_%s.yaml", timestamp))
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write eval report: %w", err)
	}

	return outputPath, nil
}
