package vision

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// Client defines the three classification passes the pipeline makes against
// a vision-capable LLM. The service holds no state across calls.
type Client interface {
	// Overview runs the low-detail counting pass over the whole photo.
	// Failure is non-fatal to the pipeline.
	Overview(ctx context.Context, image []byte) (*models.Overview, error)

	// IdentifyRegion runs the high-detail identification pass over one
	// region, given its positional label and the overview as context.
	// Returns an empty slice, not an error, when no books are visible.
	// A response that cannot be parsed as the expected structure is
	// returned as a *ParseError.
	IdentifyRegion(ctx context.Context, image []byte, label string, overview *models.Overview) ([]models.RawDetection, error)

	// Correct runs the text-only cleanup pass over the deduplicated list.
	Correct(ctx context.Context, books []models.IdentifiedBook) ([]models.IdentifiedBook, error)
}

// ParseError indicates the model returned output that could not be parsed as
// the expected structured form. For the identification pass this aborts the
// whole request: silently dropping a region would silently lose books.
type ParseError struct {
	Pass  string // "overview", "identify", or "correct"
	Label string // region label for the identify pass
	Err   error
}

func (e *ParseError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("unparseable %s response for region %s: %v", e.Pass, e.Label, e.Err)
	}
	return fmt.Sprintf("unparseable %s response: %v", e.Pass, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
