package vision

import (
	"image"
	"math"
	"testing"
)

func TestSimilarity_IdenticalImages(t *testing.T) {
	img := makePattern(96, 64)
	if got := Similarity(img, img); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Similarity(img, img) = %v, want 1.0", got)
	}
}

func TestSimilarity_DimensionsReconciled(t *testing.T) {
	// Same uniform tone at different sizes: resizing preserves the content,
	// so the score stays at 1.0 rather than erroring out.
	a := image.NewGray(image.Rect(0, 0, 100, 100))
	b := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range a.Pix {
		a.Pix[i] = 128
	}
	for i := range b.Pix {
		b.Pix[i] = 128
	}
	if got := Similarity(a, b); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Similarity across sizes = %v, want 1.0", got)
	}
}

func TestSimilarity_DissimilarImages(t *testing.T) {
	black := image.NewGray(image.Rect(0, 0, 64, 64))
	white := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	if got := Similarity(black, white); got > 0.1 {
		t.Errorf("Similarity(black, white) = %v, want near 0", got)
	}
}

func TestSimilarity_SymmetricForEqualSizes(t *testing.T) {
	a := makePattern(64, 64)
	b := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range b.Pix {
		b.Pix[i] = uint8((i * 31) % 250)
	}
	ab := Similarity(a, b)
	ba := Similarity(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestSimilarityNCC_IdenticalImages(t *testing.T) {
	img := makePattern(80, 60)
	if got := SimilarityNCC(img, img); got < 0.999 {
		t.Errorf("SimilarityNCC(img, img) = %v, want ~1.0", got)
	}
}

func TestSimilarityNCC_FlatImagesScoreZero(t *testing.T) {
	a := image.NewGray(image.Rect(0, 0, 32, 32))
	b := image.NewGray(image.Rect(0, 0, 32, 32))
	if got := SimilarityNCC(a, b); got != 0 {
		t.Errorf("SimilarityNCC on flat images = %v, want 0", got)
	}
}
