package vision

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// SSIM window size and stabilizing constants for 8-bit luminance, following
// the standard structural-similarity formulation.
const (
	ssimWindow = 8
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// Similarity compares two full-frame captures and returns a score in [0, 1],
// 1.0 meaning identical. If dimensions differ, b is resized to a's dimensions
// before comparing, a deliberate tolerance for minor capture-size jitter.
// The primary metric is the mean structural similarity over grayscale
// windows, which approximates human-perceived structural likeness.
func Similarity(a, b image.Image) float64 {
	ga := ToGray(a)
	gb := ToGray(resizeTo(b, ga.Bounds()))
	return ssim(ga, gb)
}

// SimilarityNCC is the degraded fallback metric: the best whole-frame
// normalized cross-correlation score, with b treated as the template. Not
// numerically comparable to Similarity.
func SimilarityNCC(a, b image.Image) float64 {
	ga := ToGray(a)
	gb := ToGray(resizeTo(b, ga.Bounds()))
	scores := ScoreMap(ga, gb)
	best := 0.0
	for _, row := range scores {
		for _, s := range row {
			if s > best {
				best = s
			}
		}
	}
	return best
}

// resizeTo scales img to the target bounds with bilinear interpolation.
// Returns img unchanged when the dimensions already agree.
func resizeTo(img image.Image, target image.Rectangle) image.Image {
	b := img.Bounds()
	if b.Dx() == target.Dx() && b.Dy() == target.Dy() {
		return img
	}
	dst := image.NewGray(image.Rect(0, 0, target.Dx(), target.Dy()))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ssim computes the mean structural similarity over non-overlapping windows.
// Both images must share dimensions with bounds at the origin.
func ssim(a, b *image.Gray) float64 {
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var total float64
	var windows int
	for wy := 0; wy < h; wy += ssimWindow {
		for wx := 0; wx < w; wx += ssimWindow {
			ww := min(ssimWindow, w-wx)
			wh := min(ssimWindow, h-wy)
			total += windowSSIM(a, b, wx, wy, ww, wh)
			windows++
		}
	}
	return total / float64(windows)
}

// windowSSIM compares one window via mean, variance, and covariance.
func windowSSIM(a, b *image.Gray, wx, wy, ww, wh int) float64 {
	n := float64(ww * wh)

	var sumA, sumB float64
	for y := 0; y < wh; y++ {
		rowA := a.Pix[(wy+y)*a.Stride+wx : (wy+y)*a.Stride+wx+ww]
		rowB := b.Pix[(wy+y)*b.Stride+wx : (wy+y)*b.Stride+wx+ww]
		for x := 0; x < ww; x++ {
			sumA += float64(rowA[x])
			sumB += float64(rowB[x])
		}
	}
	muA, muB := sumA/n, sumB/n

	var varA, varB, cov float64
	for y := 0; y < wh; y++ {
		rowA := a.Pix[(wy+y)*a.Stride+wx : (wy+y)*a.Stride+wx+ww]
		rowB := b.Pix[(wy+y)*b.Stride+wx : (wy+y)*b.Stride+wx+ww]
		for x := 0; x < ww; x++ {
			da := float64(rowA[x]) - muA
			db := float64(rowB[x]) - muB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n
	varB /= n
	cov /= n

	num := (2*muA*muB + ssimC1) * (2*cov + ssimC2)
	denom := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	return num / denom
}
