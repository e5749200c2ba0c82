package resolve

import (
	"strings"
	"unicode"
)

// knockoffPrefixes mark study guides and review compilations that shadow the
// real work in search results.
var knockoffPrefixes = []string{"summary", "review", "analysis of"}

// knockoffPrefix returns the knockoff marker a title starts with, or "".
func knockoffPrefix(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, prefix := range knockoffPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return prefix
		}
	}
	return ""
}

// isKnockoff reports whether a candidate title is a summary/review/analysis
// entry for a query that isn't itself one. A query that legitimately starts
// with the same marker (e.g. "Summary of Dune") is allowed to match it.
func isKnockoff(queryTitle, candidateTitle string) bool {
	prefix := knockoffPrefix(candidateTitle)
	if prefix == "" {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(queryTitle)), prefix)
}

// authorsMatch reports whether any candidate author name plausibly matches
// the expected author. When the expected author is unknown, or the candidate
// carries no author at all, there is nothing to verify and the filter passes.
//
// The word heuristic (last-name match OR at least half the expected words
// overlapping as substrings) can accept false positives for common surnames;
// tightening it would change matching recall, so it is kept as-is pending
// product review.
func authorsMatch(expected string, candidates []string) bool {
	if expected == "" || strings.EqualFold(strings.TrimSpace(expected), "unknown") {
		return true
	}
	if len(candidates) == 0 {
		return true
	}

	expectedWords := nameWords(expected)
	if len(expectedWords) == 0 {
		return true
	}

	for _, candidate := range candidates {
		candidateWords := nameWords(candidate)
		if len(candidateWords) == 0 {
			continue
		}

		// Surname check: the last word of each name.
		if expectedWords[len(expectedWords)-1] == candidateWords[len(candidateWords)-1] {
			return true
		}

		overlap := 0
		for _, ew := range expectedWords {
			for _, cw := range candidateWords {
				if strings.Contains(cw, ew) || strings.Contains(ew, cw) {
					overlap++
					break
				}
			}
		}
		if overlap*2 >= len(expectedWords) {
			return true
		}
	}

	return false
}

// titleOverlaps guards against the search service returning an unrelated
// top result for a generic query: at least one significant query word must
// appear (as a substring, either direction) in the candidate title.
func titleOverlaps(queryTitle, candidateTitle string) bool {
	queryWords := titleWords(queryTitle)
	if len(queryWords) == 0 {
		// Nothing significant to compare against ("It", "V."); the
		// author filter is the only guard we have for these.
		return true
	}

	candidateWords := titleWords(candidateTitle)
	for _, qw := range queryWords {
		for _, cw := range candidateWords {
			if strings.Contains(cw, qw) || strings.Contains(qw, cw) {
				return true
			}
		}
	}
	return false
}

// stripSubtitle drops a trailing subtitle: everything after the first colon,
// em-dash, or hyphen. Returns the title unchanged when no separator exists.
func stripSubtitle(title string) string {
	idx := strings.IndexAny(title, ":—-")
	if idx <= 0 {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(title[:idx])
}

// nameWords splits a name into lowercase alphabetic words of 3+ characters,
// dropping initials and short particles.
func nameWords(name string) []string {
	return significantWords(name, func(r rune) bool { return unicode.IsLetter(r) })
}

// titleWords splits a title into lowercase alphanumeric words of 3+ characters
func titleWords(title string) []string {
	return significantWords(title, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

func significantWords(s string, keep func(rune) bool) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !keep(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			words = append(words, f)
		}
	}
	return words
}
