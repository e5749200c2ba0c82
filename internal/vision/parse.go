package vision

import (
	"encoding/json"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// StripFences removes a markdown code fence wrapper from a model response.
// Models regularly wrap JSON output in ```json fences despite instructions
// not to, so every parse path tolerates them.
func StripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// ParseOverview parses the counting-pass response.
func ParseOverview(response string) (*models.Overview, error) {
	var overview models.Overview
	if err := json.Unmarshal([]byte(StripFences(response)), &overview); err != nil {
		return nil, &ParseError{Pass: "overview", Err: err}
	}
	return &overview, nil
}

// ParseDetections parses the identification-pass response for one region.
// The expected shape is a JSON array of detections; a {"books": [...]}
// wrapper object is tolerated. Anything else is a *ParseError.
func ParseDetections(response, label string) ([]models.RawDetection, error) {
	payload := StripFences(response)

	var detections []models.RawDetection
	if err := json.Unmarshal([]byte(payload), &detections); err != nil {
		var wrapped struct {
			Books []models.RawDetection `json:"books"`
		}
		if err2 := json.Unmarshal([]byte(payload), &wrapped); err2 != nil || wrapped.Books == nil {
			return nil, &ParseError{Pass: "identify", Label: label, Err: err}
		}
		detections = wrapped.Books
	}

	for i := range detections {
		detections[i].Confidence = normalizeConfidence(detections[i].Confidence)
	}

	// Empty slice, not nil, so "no books visible" is distinguishable from
	// an unset result.
	if detections == nil {
		detections = []models.RawDetection{}
	}
	return detections, nil
}

// ParseCorrections parses the correction-pass response.
func ParseCorrections(response string) ([]models.IdentifiedBook, error) {
	var books []models.IdentifiedBook
	if err := json.Unmarshal([]byte(StripFences(response)), &books); err != nil {
		return nil, &ParseError{Pass: "correct", Err: err}
	}
	for i := range books {
		books[i].Confidence = normalizeConfidence(books[i].Confidence)
	}
	return books, nil
}

func normalizeConfidence(c models.Confidence) models.Confidence {
	switch models.Confidence(strings.ToLower(strings.TrimSpace(string(c)))) {
	case models.ConfidenceHigh:
		return models.ConfidenceHigh
	case models.ConfidenceMedium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
