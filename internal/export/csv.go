package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// WriteBooks writes enriched records as CSV for the downstream catalog tool
func WriteBooks(w io.Writer, books []models.EnrichedBook) error {
	cw := csv.NewWriter(w)

	header := []string{
		"title", "author", "isbn13", "isbn10", "publish_year",
		"publisher", "page_count", "subjects", "cover_url",
		"confidence", "matched",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range books {
		row := []string{
			b.Title,
			b.Author,
			b.ISBN13,
			b.ISBN10,
			optionalInt(b.PublishYear),
			b.Publisher,
			optionalInt(b.PageCount),
			b.Subjects,
			b.CoverURL,
			string(b.Confidence),
			strconv.FormatBool(b.Matched),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
