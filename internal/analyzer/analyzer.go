package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"chart-oracle/internal/domain"
)

const (
	gridSize = 100
	halfRows = gridSize / 2
)

// Analyzer derives a coarse trend from the brightness distribution of a chart
// screenshot. Pure: no I/O beyond reading the supplied bytes.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze decodes the image, samples it onto a fixed 100x100 luminance grid
// and compares the mean brightness of the top and bottom halves. A darker top
// half reads as an upward trend; confidence is the relative brightness gap.
func (a *Analyzer) Analyze(imageBytes []byte) (domain.AnalysisResult, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("decode chart image: %w", err)
	}

	grid := sampleLuminance(img)

	var topSum, bottomSum float64
	for y := 0; y < halfRows; y++ {
		for x := 0; x < gridSize; x++ {
			topSum += grid[y][x]
		}
	}
	for y := halfRows; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			bottomSum += grid[y][x]
		}
	}
	cells := float64(halfRows * gridSize)
	topMean := topSum / cells
	bottomMean := bottomSum / cells

	if topMean < bottomMean {
		return domain.AnalysisResult{
			Trend:      domain.TrendUp,
			Confidence: gapPercent(bottomMean-topMean, bottomMean),
		}, nil
	}
	return domain.AnalysisResult{
		Trend:      domain.TrendDown,
		Confidence: gapPercent(topMean-bottomMean, topMean),
	}, nil
}

// gapPercent is the brightness gap relative to the brighter half, rounded to
// two decimals. A zero denominator (all-black reference half) yields zero
// confidence instead of a division fault.
func gapPercent(gap, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return math.Round(gap/denom*100*100) / 100
}

// sampleLuminance maps the source image onto a fixed grid with nearest
// neighbor sampling, removing any dependency on resolution or aspect ratio.
func sampleLuminance(img image.Image) [gridSize][gridSize]float64 {
	var grid [gridSize][gridSize]float64
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return grid
	}
	for gy := 0; gy < gridSize; gy++ {
		sy := bounds.Min.Y + (gy*h)/gridSize
		for gx := 0; gx < gridSize; gx++ {
			sx := bounds.Min.X + (gx*w)/gridSize
			r, g, b, _ := img.At(sx, sy).RGBA()
			// Rec. 601 luma over 16-bit channels, scaled to 0-255.
			grid[gy][gx] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
		}
	}
	return grid
}
