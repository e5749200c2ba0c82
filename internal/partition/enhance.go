package partition

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// Enhancement parameters tuned for spine text legibility. Shelf photos tend
// to be dim and slightly soft; a mild contrast stretch plus sharpening makes
// spine lettering noticeably easier for the classifier to read.
const (
	contrastBoost   = 12
	sharpenStrength = 0.6
	jpegQuality     = 90
)

// Extract crops a region out of the decoded source image, enhances it, and
// re-encodes it as JPEG for the classification call.
func Extract(src image.Image, region models.Region) ([]byte, error) {
	rect := image.Rect(region.Left, region.Top, region.Left+region.Width, region.Top+region.Height)

	cropped := imaging.Crop(src, rect)
	if cropped.Bounds().Empty() {
		return nil, fmt.Errorf("region %s is outside the image bounds", region.Label)
	}

	enhanced := imaging.Sharpen(imaging.AdjustContrast(cropped, contrastBoost), sharpenStrength)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, enhanced, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode region %s: %w", region.Label, err)
	}

	return buf.Bytes(), nil
}
