package vision

import (
	"image"
	"image/draw"
)

// ToGray converts an image to a single-channel luminance raster with bounds
// normalized to the origin. Matching on luminance removes color-channel noise
// sensitivity between the extraction screenshot and the live one.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
