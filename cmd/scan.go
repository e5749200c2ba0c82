package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lehigh-university-libraries/shelfscan/internal/export"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/openlibrary"
	"github.com/lehigh-university-libraries/shelfscan/internal/pipeline"
	"github.com/lehigh-university-libraries/shelfscan/internal/resolve"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var (
		csvPath   string
		jsonPath  string
		noResolve bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Identify and resolve the books in a shelf photo",
		Long: `Runs the full pipeline over a single bookshelf photo: identification,
deduplication, correction, and Open Library resolution. Prints the resulting
book list and optionally writes it as CSV or JSON.`,
		Example: `  # Scan a photo and print the results
  shelfscan scan shelf.jpg

  # Skip resolution, write CSV for the catalog tool
  shelfscan scan shelf.jpg --no-resolve --csv books.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
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

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := pipeline.New(client).Identify(ctx, imageData)
			if err != nil {
				return err
			}

			var enriched []models.EnrichedBook
			if noResolve {
				enriched = make([]models.EnrichedBook, 0, len(result.Books))
				for _, b := range result.Books {
					enriched = append(enriched, models.EnrichedBook{IdentifiedBook: b})
				}
			} else {
				resolver := resolve.New(openlibrary.NewClient())
				enriched = resolver.Resolve(ctx, result.Books)
			}

			printBooks(enriched)

			if csvPath != "" {
				if err := writeCSVFile(csvPath, enriched); err != nil {
					return err
				}
				slog.Info("Wrote CSV", "path", csvPath)
			}

			if jsonPath != "" {
				if err := writeJSONFile(jsonPath, enriched); err != nil {
					return err
				}
				slog.Info("Wrote JSON", "path", jsonPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write results as CSV to this path")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Write results as JSON to this path")
	cmd.Flags().BoolVar(&noResolve, "no-resolve", false, "Skip Open Library resolution")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Wall-clock budget for the whole run")

	return cmd
}

func printBooks(books []models.EnrichedBook) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Author", "ISBN-13", "Year", "Confidence", "Matched"})

	for i, b := range books {
		year := ""
		if b.PublishYear != 0 {
			year = fmt.Sprintf("%d", b.PublishYear)
		}
		t.AppendRow(table.Row{i + 1, b.Title, b.Author, b.ISBN13, year, b.Confidence, b.Matched})
	}

	t.Render()
}

func writeCSVFile(path string, books []models.EnrichedBook) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()
	return export.WriteBooks(f, books)
}

func writeJSONFile(path string, books []models.EnrichedBook) error {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}
