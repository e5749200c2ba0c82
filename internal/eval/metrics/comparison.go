package metrics

import (
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/eval/dataset"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// ListComparison scores an identified book list against the ground truth for
// one shelf photo. A title counts as matched when it fuzzy-matches exactly one
// unclaimed expected entry.
type ListComparison struct {
	Expected     int
	Identified   int
	TitleMatches int

	Precision float64
	Recall    float64
	F1        float64

	MissedTitles []string
	ExtraTitles  []string
}

// CompareBookLists greedily pairs identified books with expected entries by
// title similarity and computes precision/recall over the pairing.
func CompareBookLists(identified []models.IdentifiedBook, expected []dataset.ExpectedBook) *ListComparison {
	comparison := &ListComparison{
		Expected:   len(expected),
		Identified: len(identified),
	}

	claimed := make([]bool, len(expected))
	for _, book := range identified {
		matched := false
		for i, exp := range expected {
			if claimed[i] {
				continue
			}
			if titlesMatch(book.Title, exp.Title) {
				claimed[i] = true
				matched = true
				comparison.TitleMatches++
				break
			}
		}
		if !matched {
			comparison.ExtraTitles = append(comparison.ExtraTitles, book.Title)
		}
	}

	for i, exp := range expected {
		if !claimed[i] {
			comparison.MissedTitles = append(comparison.MissedTitles, exp.Title)
		}
	}

	if comparison.Identified > 0 {
		comparison.Precision = float64(comparison.TitleMatches) / float64(comparison.Identified)
	}
	if comparison.Expected > 0 {
		comparison.Recall = float64(comparison.TitleMatches) / float64(comparison.Expected)
	}
	if comparison.Precision+comparison.Recall > 0 {
		comparison.F1 = 2 * comparison.Precision * comparison.Recall /
			(comparison.Precision + comparison.Recall)
	}

	return comparison
}

// titlesMatch accepts normalized equality, substring containment, or high
// Levenshtein similarity. Identification output regularly truncates subtitles
// and misreads a character or two, so exact matching would undercount.
func titlesMatch(identified, expected string) bool {
	a := normalizeForComparison(identified)
	b := normalizeForComparison(expected)

	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return calculateSimilarity(a, b) > 0.8
}

// normalizeForComparison normalizes text for comparison
func normalizeForComparison(text string) string {
	text = strings.ToLower(text)

	// Remove punctuation
	re := regexp.MustCompile(`[^\w\s]`)
	text = re.ReplaceAllString(text, "")

	// Remove extra whitespace
	text = strings.Join(strings.Fields(text), " ")

	return strings.TrimSpace(text)
}

// calculateSimilarity calculates similarity ratio (0.0 to 1.0) using Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}

	return 1.0 - (float64(distance) / float64(maxLen))
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	if len(s1) == 0 {
		return len(s2)
	}

	if len(s2) == 0 {
		return len(s1)
	}

	rows := len(s1) + 1
	cols := len(s2) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
	}

	for i := 0; i < rows; i++ {
		matrix[i][0] = i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			matrix[i][j] = min(deletion, min(insertion, substitution))
		}
	}

	return matrix[rows-1][cols-1]
}
