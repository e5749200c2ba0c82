package partition

import (
	"fmt"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

const (
	// Images smaller than this on both axes are classified in one shot;
	// tiling overhead isn't justified for small photos.
	smallImageMax = 1200

	// Fraction of a cell dimension each interior edge extends into the
	// neighboring cell, so a spine spanning a grid line is fully visible
	// in at least one region. Both sides of an interior edge expand, so
	// adjacent regions share a band of twice this fraction.
	overlapFraction = 0.15
)

// Grid partitions an image of the given dimensions into overlapping regions.
// The grid is sized from the overview's estimated book and shelf counts when
// available; a nil overview falls to the smallest grid the dimensions allow.
func Grid(width, height int, overview *models.Overview) []models.Region {
	if width < smallImageMax && height < smallImageMax {
		return []models.Region{{
			Left:   0,
			Top:    0,
			Width:  width,
			Height: height,
			Label:  "full image",
		}}
	}

	count := 0
	shelves := 1
	if overview != nil {
		count = overview.EstimatedCount
		if overview.EstimatedShelves > 1 {
			shelves = overview.EstimatedShelves
		}
	}

	cols := 2
	switch {
	case count >= 40 || width >= 3000:
		cols = 4
	case count >= 20 || width >= 2000:
		cols = 3
	}

	rows := 1
	switch {
	case shelves >= 4 || height >= 3000:
		rows = 4
	case shelves >= 2 || height >= 1600:
		rows = max(shelves, 2)
	}

	cellW := width / cols
	cellH := height / rows
	padX := int(float64(cellW) * overlapFraction)
	padY := int(float64(cellH) * overlapFraction)

	regions := make([]models.Region, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			left := c * cellW
			top := r * cellH
			right := left + cellW
			bottom := top + cellH

			// Integer division leaves a remainder strip; the last
			// row/column absorbs it so coverage reaches the edge.
			if c == cols-1 {
				right = width
			}
			if r == rows-1 {
				bottom = height
			}

			// Overlap only on interior edges, never past the boundary.
			if c > 0 {
				left -= padX
			}
			if c < cols-1 {
				right += padX
			}
			if r > 0 {
				top -= padY
			}
			if r < rows-1 {
				bottom += padY
			}

			regions = append(regions, models.Region{
				Left:   left,
				Top:    top,
				Width:  right - left,
				Height: bottom - top,
				Label:  fmt.Sprintf("row%d-col%d", r+1, c+1),
			})
		}
	}

	return regions
}
