package vision

import (
	"fmt"
	"image"
	"testing"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

// makePattern builds a deterministic non-flat grayscale image so correlation
// peaks are sharp and reproducible.
func makePattern(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8((x*7 + y*13 + x*y) % 251)
		}
	}
	return img
}

func crop(src *image.Gray, r image.Rectangle) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.Pix[y*out.Stride+x] = src.Pix[(r.Min.Y+y)*src.Stride+r.Min.X+x]
		}
	}
	return out
}

func paste(dst, src *image.Gray, at image.Point) {
	for y := 0; y < src.Bounds().Dy(); y++ {
		for x := 0; x < src.Bounds().Dx(); x++ {
			dst.Pix[(at.Y+y)*dst.Stride+at.X+x] = src.Pix[y*src.Stride+x]
		}
	}
}

func TestScoreMap_Dimensions(t *testing.T) {
	live := makePattern(100, 80)
	tpl := crop(live, image.Rect(10, 10, 30, 25))

	scores := ScoreMap(live, tpl)
	if scores == nil {
		t.Fatal("expected a score map")
	}
	if got, want := len(scores), 80-15+1; got != want {
		t.Errorf("score map height = %d, want %d", got, want)
	}
	if got, want := len(scores[0]), 100-20+1; got != want {
		t.Errorf("score map width = %d, want %d", got, want)
	}
}

func TestScoreMap_PeakAtEmbeddedTemplate(t *testing.T) {
	live := makePattern(100, 100)
	tpl := crop(live, image.Rect(30, 40, 50, 60))

	scores := ScoreMap(live, tpl)
	if scores == nil {
		t.Fatal("expected a score map")
	}
	if got := scores[40][30]; got < 0.999 {
		t.Errorf("score at embedded offset = %v, want ~1.0", got)
	}
}

func TestScoreMap_LiveSmallerThanTemplate(t *testing.T) {
	live := makePattern(10, 10)
	tpl := makePattern(20, 20)
	if scores := ScoreMap(live, tpl); scores != nil {
		t.Errorf("expected nil score map, got %dx%d", len(scores), len(scores[0]))
	}
}

func TestLocate_FindsEmbeddedTemplate(t *testing.T) {
	live := makePattern(120, 90)
	tpl := crop(live, image.Rect(25, 30, 45, 50))

	m := NewMatcher(FirstAboveThreshold, nil)
	pt, score, ok := m.Locate(live, tpl, 0.99)
	if !ok {
		t.Fatal("expected a match")
	}
	if pt != (image.Point{X: 25, Y: 30}) {
		t.Errorf("match offset = %v, want (25,30)", pt)
	}
	if score < 0.99 {
		t.Errorf("confidence = %v, want >= 0.99", score)
	}
}

func TestLocate_NotFoundOnFlatFrame(t *testing.T) {
	live := image.NewGray(image.Rect(0, 0, 80, 80))
	for i := range live.Pix {
		live.Pix[i] = 100
	}
	tpl := makePattern(20, 20)

	m := NewMatcher(FirstAboveThreshold, nil)
	if _, _, ok := m.Locate(live, tpl, 0.7); ok {
		t.Error("expected no match on a flat frame")
	}
}

func TestLocate_TooSmallFrameIsNotFound(t *testing.T) {
	m := NewMatcher(FirstAboveThreshold, nil)
	if _, _, ok := m.Locate(makePattern(10, 10), makePattern(20, 20), 0.7); ok {
		t.Error("expected not-found when the live frame is smaller than the template")
	}
}

func TestLocate_FirstPolicyIsRowMajorDeterministic(t *testing.T) {
	tpl := makePattern(20, 20)
	live := image.NewGray(image.Rect(0, 0, 120, 120))
	for i := range live.Pix {
		live.Pix[i] = 200
	}
	paste(live, tpl, image.Point{X: 10, Y: 10})
	paste(live, tpl, image.Point{X: 70, Y: 70})

	m := NewMatcher(FirstAboveThreshold, nil)
	for i := 0; i < 5; i++ {
		pt, _, ok := m.Locate(live, tpl, 0.95)
		if !ok {
			t.Fatal("expected a match")
		}
		if pt != (image.Point{X: 10, Y: 10}) {
			t.Fatalf("run %d: match offset = %v, want the row-major first occurrence (10,10)", i, pt)
		}
	}
}

func TestLocate_BestPolicyReturnsGlobalMaximum(t *testing.T) {
	live := makePattern(100, 100)
	tpl := crop(live, image.Rect(60, 55, 80, 75))

	m := NewMatcher(BestAboveThreshold, nil)
	pt, score, ok := m.Locate(live, tpl, 0.9)
	if !ok {
		t.Fatal("expected a match")
	}
	if pt != (image.Point{X: 60, Y: 55}) {
		t.Errorf("match offset = %v, want (60,55)", pt)
	}
	if score < 0.999 {
		t.Errorf("confidence = %v, want ~1.0", score)
	}
}

func TestMatch_CenterOfRelocatedElement(t *testing.T) {
	// An element cropped at (100,100)-(180,140) and found at the same place
	// on the live frame reports its center, (140,120).
	live := makePattern(300, 200)
	box := model.Box{100, 100, 180, 140}
	raster := crop(live, box.Rect())
	tpl := model.Template{Name: "submit button", Box: box}

	m := NewMatcher(FirstAboveThreshold, nil)
	res, ok := m.Match(live, tpl, raster, 0.99)
	if !ok {
		t.Fatal("expected a match")
	}
	if res.Center != (image.Point{X: 140, Y: 120}) {
		t.Errorf("center = %v, want (140,120)", res.Center)
	}
	if res.CenterXY != [2]int{140, 120} {
		t.Errorf("center xy = %v, want [140 120]", res.CenterXY)
	}
	if res.Box != box {
		t.Errorf("box = %v, want %v", res.Box, box)
	}
	if res.Name != "submit button" {
		t.Errorf("name = %q", res.Name)
	}
}

func TestMatch_RelocatesDriftedElement(t *testing.T) {
	// The template is extracted from one frame, then the UI shifts 20px
	// right before the next capture; matching reports the new center.
	frame1 := makePattern(300, 200)
	box := model.Box{100, 100, 140, 140}
	raster := crop(frame1, box.Rect())

	frame2 := image.NewGray(image.Rect(0, 0, 300, 200))
	for i := range frame2.Pix {
		frame2.Pix[i] = 230
	}
	paste(frame2, raster, image.Point{X: 120, Y: 100})

	m := NewMatcher(FirstAboveThreshold, nil)
	res, ok := m.Match(frame2, model.Template{Name: "icon", Box: box}, raster, 0.95)
	if !ok {
		t.Fatal("expected a match on the drifted frame")
	}
	if res.Center != (image.Point{X: 140, Y: 120}) {
		t.Errorf("center = %v, want (140,120) after the 20px drift", res.Center)
	}
}

type mapImageSource map[string]image.Image

func (m mapImageSource) Image(tpl model.Template) (image.Image, error) {
	img, ok := m[tpl.Name]
	if !ok {
		return nil, fmt.Errorf("no raster for %q", tpl.Name)
	}
	return img, nil
}

func TestMatchAll_SkipsUnloadableTemplates(t *testing.T) {
	live := makePattern(200, 150)
	boxA := model.Box{20, 20, 60, 50}
	boxB := model.Box{100, 80, 150, 120}

	templates := map[string]model.Template{
		"a":       {Name: "a", Box: boxA},
		"b":       {Name: "b", Box: boxB},
		"missing": {Name: "missing", File: "missing.png"},
	}
	src := mapImageSource{
		"a": crop(live, boxA.Rect()),
		"b": crop(live, boxB.Rect()),
	}

	m := NewMatcher(FirstAboveThreshold, nil)
	results := m.MatchAll(live, templates, src, 0.99)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if _, ok := results["missing"]; ok {
		t.Error("unloadable template should be skipped, not matched")
	}
	if got, want := results["a"].Center, boxA.Center(); got != want {
		t.Errorf("a center = %v, want %v", got, want)
	}
	if got, want := results["b"].Center, boxB.Center(); got != want {
		t.Errorf("b center = %v, want %v", got, want)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("best") != BestAboveThreshold {
		t.Error(`ParsePolicy("best") != BestAboveThreshold`)
	}
	if ParsePolicy("first") != FirstAboveThreshold {
		t.Error(`ParsePolicy("first") != FirstAboveThreshold`)
	}
	if ParsePolicy("") != FirstAboveThreshold {
		t.Error("empty policy should default to FirstAboveThreshold")
	}
}
