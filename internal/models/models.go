package models

import "time"

// Confidence is the classifier's self-reported certainty for a detection.
// Its only algorithmic use is dedup tie-breaking.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank returns the ordinal value used for dedup priority.
// Unrecognized values rank below "low" so they never displace a real reading.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// IdentifiedBook is one deduplicated book from a shelf photo
type IdentifiedBook struct {
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Confidence Confidence `json:"confidence"`
	Corrected  bool       `json:"corrected"`
}

// RawDetection is a single classifier hit scoped to one region.
// Many raw detections collapse into one IdentifiedBook.
type RawDetection struct {
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Confidence Confidence `json:"confidence"`
}

// Overview holds the coarse first-pass estimate of what the photo contains.
// A failed overview pass leaves it nil and the pipeline falls back to the
// smallest partition grid.
type Overview struct {
	EstimatedCount   int    `json:"estimated_count"`
	EstimatedShelves int    `json:"estimated_shelves"`
	Notes            string `json:"notes"`
}

// Region is a rectangular sub-area of the source image. The label (e.g.
// "row2-col3") is passed to the classifier as a positional hint.
type Region struct {
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// EnrichedBook is an IdentifiedBook with bibliographic identifiers attached.
// Matched=false means every resolver strategy was exhausted; the original
// title and author are preserved verbatim in that case.
type EnrichedBook struct {
	IdentifiedBook
	ISBN13      string `json:"isbn13,omitempty"`
	ISBN10      string `json:"isbn10,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	PublishYear int    `json:"publish_year,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`
	Subjects    string `json:"subjects,omitempty"`
	Matched     bool   `json:"matched"`
}

// ScanSession represents one shelf photo scan and its review state
type ScanSession struct {
	ID          string           `json:"id"`
	ImagePath   string           `json:"image_path"`
	ImageURL    string           `json:"image_url"`
	ImageWidth  int              `json:"image_width"`
	ImageHeight int              `json:"image_height"`
	Overview    *Overview        `json:"overview,omitempty"`
	Books       []IdentifiedBook `json:"books"`
	Enriched    []EnrichedBook   `json:"enriched,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
