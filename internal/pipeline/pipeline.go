package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/shelfscan/internal/dedupe"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/partition"
	"github.com/lehigh-university-libraries/shelfscan/internal/vision"
	"golang.org/x/sync/errgroup"
)

// Pipeline runs the multi-pass identification flow over one shelf photo:
// overview, partitioning, parallel per-region identification, dedup, and a
// text-only correction pass. It holds no per-request state; one Pipeline is
// shared across requests.
type Pipeline struct {
	vision vision.Client
}

// New creates a pipeline backed by the given classification client
func New(client vision.Client) *Pipeline {
	return &Pipeline{vision: client}
}

// Result is the output of a completed identification run
type Result struct {
	Books    []models.IdentifiedBook `json:"books"`
	Overview *models.Overview        `json:"overview"`
}

// Identify runs the full identification pipeline over a photo. The overview
// and correction passes degrade in place on failure; a failed region
// identification aborts the whole request, since dropping a region would
// silently lose books. Cancel or time out via ctx; no partial results are
// returned.
func (p *Pipeline) Identify(ctx context.Context, imageData []byte) (*Result, error) {
	src, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := src.Bounds()

	// A client may legitimately return no overview without an error; both
	// cases fall to the default grid.
	overview, err := p.vision.Overview(ctx, imageData)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Overview pass failed, proceeding with default grid", "error", err)
		overview = nil
	} else if overview != nil {
		slog.Info("Overview complete",
			"estimated_count", overview.EstimatedCount,
			"estimated_shelves", overview.EstimatedShelves)
	}

	regions := partition.Grid(bounds.Dx(), bounds.Dy(), overview)
	slog.Info("Partitioned image",
		"width", bounds.Dx(), "height", bounds.Dy(), "regions", len(regions))

	// One concurrent classification call per region; each goroutine writes
	// only to its own slot. Any failure cancels the rest and aborts the run.
	detections := make([][]models.RawDetection, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	for i, region := range regions {
		g.Go(func() error {
			buf, err := partition.Extract(src, region)
			if err != nil {
				return fmt.Errorf("failed to extract region %s: %w", region.Label, err)
			}
			found, err := p.vision.IdentifyRegion(gctx, buf, region.Label, overview)
			if err != nil {
				return err
			}
			slog.Debug("Region classified", "label", region.Label, "detections", len(found))
			detections[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []models.RawDetection
	for _, d := range detections {
		flat = append(flat, d...)
	}

	books := dedupe.Merge(flat)
	slog.Info("Deduplicated detections", "raw", len(flat), "unique", len(books))

	if len(books) > 0 {
		corrected, err := p.vision.Correct(ctx, books)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Correction pass failed, keeping uncorrected list", "error", err)
		} else {
			books = dropEmptyTitles(corrected)
		}
	}

	return &Result{Books: books, Overview: overview}, nil
}

// dropEmptyTitles removes entries the correction pass emptied out. A record
// without a title is unusable downstream.
func dropEmptyTitles(books []models.IdentifiedBook) []models.IdentifiedBook {
	kept := books[:0]
	for _, b := range books {
		if strings.TrimSpace(b.Title) == "" {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}
