package imageprocessor

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Metric selects the scoring function used for every comparison of a run
type Metric string

const (
	// MetricSSIM is the mean structural similarity over fixed 8x8 windows
	MetricSSIM Metric = "ssim"
	// MetricRMS is one minus the normalized global root-mean-square difference
	MetricRMS Metric = "rms"
)

// IdentityScore is what both metrics return for two identical buffers
const IdentityScore = 1.0

const (
	ssimWindow = 8
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// ParseMetric resolves a metric name
func ParseMetric(name string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(name))) {
	case "", MetricSSIM:
		return MetricSSIM, nil
	case MetricRMS:
		return MetricRMS, nil
	default:
		return "", fmt.Errorf("unknown metric %q (want ssim or rms)", name)
	}
}

func (m Metric) scoreFunc() (func(a, b *image.Gray) float64, error) {
	switch m {
	case MetricSSIM:
		return ComputeSSIM, nil
	case MetricRMS:
		return ComputeRMS, nil
	default:
		return nil, fmt.Errorf("unknown metric %q", string(m))
	}
}

// ComputeSSIM returns the mean SSIM of a and b over non-overlapping 8x8 windows.
// The windowing follows the 8x8 "MSSIM simple" scheme: plain window means,
// variances and covariance with no Gaussian weighting, averaged over windows.
// Windows on the right and bottom edges are clipped to the image. Both buffers
// must have the same size; callers go through Evaluator to get that checked.
func ComputeSSIM(a, b *image.Gray) float64 {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w == 0 || h == 0 {
		return IdentityScore
	}

	var total float64
	var windows int
	for y0 := 0; y0 < h; y0 += ssimWindow {
		y1 := min(y0+ssimWindow, h)
		for x0 := 0; x0 < w; x0 += ssimWindow {
			x1 := min(x0+ssimWindow, w)
			total += windowSSIM(a, b, x0, y0, x1, y1)
			windows++
		}
	}
	return total / float64(windows)
}

// windowSSIM scores one window. Variance and covariance use the same
// accumulation so identical windows score exactly 1.
func windowSSIM(a, b *image.Gray, x0, y0, x1, y1 int) float64 {
	n := float64((x1 - x0) * (y1 - y0))

	var sumA, sumB float64
	for y := y0; y < y1; y++ {
		rowA := a.Pix[y*a.Stride:]
		rowB := b.Pix[y*b.Stride:]
		for x := x0; x < x1; x++ {
			sumA += float64(rowA[x])
			sumB += float64(rowB[x])
		}
	}
	meanA, meanB := sumA/n, sumB/n

	var varA, varB, cov float64
	for y := y0; y < y1; y++ {
		rowA := a.Pix[y*a.Stride:]
		rowB := b.Pix[y*b.Stride:]
		for x := x0; x < x1; x++ {
			da := float64(rowA[x]) - meanA
			db := float64(rowB[x]) - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA, varB, cov = varA/n, varB/n, cov/n

	num := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	den := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}

// ComputeRMS returns 1 - rms(a-b)/255, so identical buffers score 1 and
// black against white scores 0.
func ComputeRMS(a, b *image.Gray) float64 {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w == 0 || h == 0 {
		return IdentityScore
	}

	var sum float64
	for y := 0; y < h; y++ {
		rowA := a.Pix[y*a.Stride:]
		rowB := b.Pix[y*b.Stride:]
		for x := 0; x < w; x++ {
			d := float64(rowA[x]) - float64(rowB[x])
			sum += d * d
		}
	}
	rms := math.Sqrt(sum / float64(w*h))
	return IdentityScore - rms/255
}
