package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// OverviewPrompt builds the instruction for the coarse counting pass.
func OverviewPrompt() string {
	return `You are looking at a photograph of a bookshelf.

Do NOT identify individual books. Give a quick structural overview only:
1. Roughly how many books are visible (count spines, estimate when stacked or partially hidden)
2. How many shelf rows the photo shows
3. Any notes that would help a detailed pass (lighting problems, angled spines, stacked piles, non-book objects)

OUTPUT FORMAT:
Respond with ONLY a JSON object:

{
  "estimated_count": 25,
  "estimated_shelves": 3,
  "notes": "top shelf is partially cut off, several books stacked horizontally on the right"
}`
}

// IdentifyPrompt builds the instruction for the per-region identification
// pass. The region label and overview are included as positional anchors;
// they are best-effort hints, not guarantees of non-overlapping results.
func IdentifyPrompt(label string, overview *models.Overview) string {
	var context strings.Builder
	fmt.Fprintf(&context, "This image is the %q section of a larger bookshelf photo.", label)
	if overview != nil {
		fmt.Fprintf(&context, " The full photo contains roughly %d books across %d shelves.",
			overview.EstimatedCount, overview.EstimatedShelves)
		if overview.Notes != "" {
			fmt.Fprintf(&context, " Notes from the overview pass: %s", overview.Notes)
		}
	}

	return fmt.Sprintf(`You are identifying books in a photograph of a bookshelf section.

%s

INSTRUCTIONS:
1. Examine every visible book spine and cover in this section
2. Read the title and author exactly as printed; do not guess at books you cannot read
3. Use "Unknown" for the author when no author is legible
4. Rate your confidence for each book:
   - "high": title clearly legible
   - "medium": title readable but partially obscured or at an angle
   - "low": a plausible reading of a hard-to-read spine
5. Books cut off at the edge of this section may appear fully in a neighboring section; include them anyway if you can read them

OUTPUT FORMAT:
Respond with ONLY a JSON array. If no books are visible, respond with [].

[
  {"title": "The Left Hand of Darkness", "author": "Ursula K. Le Guin", "confidence": "high"},
  {"title": "Dune", "author": "Frank Herbert", "confidence": "medium"}
]`, context.String())
}

// CorrectPrompt builds the instruction for the text-only correction pass
// over the deduplicated list.
func CorrectPrompt(books []models.IdentifiedBook) string {
	listing, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		// Marshaling a plain struct slice can't realistically fail;
		// fall back to an empty list rather than panic.
		listing = []byte("[]")
	}

	return fmt.Sprintf(`You are reviewing a list of books extracted from a bookshelf photo by OCR-style identification. The list may contain near-duplicate entries, misspelled titles, and author names embedded in the title field.

Current list:

%s

INSTRUCTIONS:
1. Merge entries that are clearly the same book (e.g. truncated vs. full title)
2. Move author names out of title fields (e.g. "Dune Frank Herbert" -> title "Dune", author "Frank Herbert")
3. Fix recognizable misspellings of well-known titles and authors
4. Keep the original confidence value of each entry; when merging, keep the higher confidence
5. Set "corrected": true on every entry you changed or merged, false on entries you left alone
6. Do NOT invent books, drop legitimate entries, or reorder the list

OUTPUT FORMAT:
Respond with ONLY a JSON array in the same shape as the input.`, listing)
}
