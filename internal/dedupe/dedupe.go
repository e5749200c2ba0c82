package dedupe

import (
	"strings"
	"unicode"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// Merge collapses per-region detections into one book per distinct title.
// Overlapping regions see the same spine more than once, so collisions are
// expected; the highest-confidence reading wins and ties keep the entry seen
// first. A single forward pass with a map keeps this O(n) and preserves
// first-seen order for tie-breaking.
func Merge(detections []models.RawDetection) []models.IdentifiedBook {
	index := make(map[string]int, len(detections))
	books := make([]models.IdentifiedBook, 0, len(detections))

	for _, d := range detections {
		key := NormalizeTitle(d.Title)
		if key == "" {
			// No usable title
			continue
		}

		if i, ok := index[key]; ok {
			if d.Confidence.Rank() > books[i].Confidence.Rank() {
				books[i] = models.IdentifiedBook{
					Title:      d.Title,
					Author:     d.Author,
					Confidence: d.Confidence,
				}
			}
			continue
		}

		index[key] = len(books)
		books = append(books, models.IdentifiedBook{
			Title:      d.Title,
			Author:     d.Author,
			Confidence: d.Confidence,
		})
	}

	return books
}

// NormalizeTitle forms the dedup key: lowercase with everything but letters
// and digits stripped, so "Dune", "dune", and "DUNE!" collide.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
