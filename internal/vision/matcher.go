package vision

import (
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

// Policy selects how the matcher picks among score-map cells that meet the
// confidence threshold.
type Policy int

const (
	// FirstAboveThreshold returns the first qualifying cell in row-major
	// (top-to-bottom, then left-to-right) scan order, not the global
	// maximum. Callers needing the best match among several candidates must
	// use BestAboveThreshold or pre-filter.
	FirstAboveThreshold Policy = iota
	// BestAboveThreshold returns the cell with the highest score, provided
	// it meets the threshold.
	BestAboveThreshold
)

// ParsePolicy converts a config string ("first" or "best") to a Policy.
func ParsePolicy(s string) Policy {
	if s == "best" {
		return BestAboveThreshold
	}
	return FirstAboveThreshold
}

func (p Policy) String() string {
	if p == BestAboveThreshold {
		return "best"
	}
	return "first"
}

// DefaultThreshold is the confidence threshold used when a caller passes a
// non-positive value.
const DefaultThreshold = 0.7

// ImageSource resolves a template's raster. Implemented by store.Store.
type ImageSource interface {
	Image(tpl model.Template) (image.Image, error)
}

// Matcher locates previously stored template rasters within freshly captured
// frames using normalized cross-correlation. NCC is used instead of raw
// difference metrics because it is invariant to uniform brightness and
// contrast shifts between captures.
type Matcher struct {
	policy Policy
	logger *zap.Logger
}

// NewMatcher creates a Matcher with the given selection policy.
func NewMatcher(policy Policy, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{policy: policy, logger: logger}
}

// ScoreMap computes the zero-mean normalized cross-correlation of tpl slid
// over live. The result has dimensions (H_live-H_tpl+1) x (W_live-W_tpl+1),
// indexed [y][x] by the template's top-left offset. Scores are in [-1, 1].
// Returns nil if the live frame is smaller than the template in either
// dimension.
func ScoreMap(live, tpl *image.Gray) [][]float64 {
	lw, lh := live.Bounds().Dx(), live.Bounds().Dy()
	tw, th := tpl.Bounds().Dx(), tpl.Bounds().Dy()
	if tw == 0 || th == 0 || lw < tw || lh < th {
		return nil
	}

	// Zero-mean template and its norm, computed once.
	n := float64(tw * th)
	var tplSum float64
	for y := 0; y < th; y++ {
		row := tpl.Pix[y*tpl.Stride : y*tpl.Stride+tw]
		for x := 0; x < tw; x++ {
			tplSum += float64(row[x])
		}
	}
	tplMean := tplSum / n
	tplZero := make([]float64, tw*th)
	var tplNormSq float64
	for y := 0; y < th; y++ {
		row := tpl.Pix[y*tpl.Stride : y*tpl.Stride+tw]
		for x := 0; x < tw; x++ {
			v := float64(row[x]) - tplMean
			tplZero[y*tw+x] = v
			tplNormSq += v * v
		}
	}

	// Integral images over the live frame for per-window sum and sum of
	// squares, so each window's mean and variance are O(1).
	sum := make([]float64, (lw+1)*(lh+1))
	sqSum := make([]float64, (lw+1)*(lh+1))
	w1 := lw + 1
	for y := 1; y <= lh; y++ {
		row := live.Pix[(y-1)*live.Stride : (y-1)*live.Stride+lw]
		for x := 1; x <= lw; x++ {
			v := float64(row[x-1])
			sum[y*w1+x] = v + sum[(y-1)*w1+x] + sum[y*w1+x-1] - sum[(y-1)*w1+x-1]
			sqSum[y*w1+x] = v*v + sqSum[(y-1)*w1+x] + sqSum[y*w1+x-1] - sqSum[(y-1)*w1+x-1]
		}
	}
	windowSum := func(tbl []float64, x, y int) float64 {
		return tbl[(y+th)*w1+x+tw] - tbl[y*w1+x+tw] - tbl[(y+th)*w1+x] + tbl[y*w1+x]
	}

	out := make([][]float64, lh-th+1)
	for py := range out {
		row := make([]float64, lw-tw+1)
		for px := range row {
			// Numerator: sum(I * tplZero). The window-mean term vanishes
			// because the zero-mean template sums to zero.
			var num float64
			for y := 0; y < th; y++ {
				liveRow := live.Pix[(py+y)*live.Stride+px : (py+y)*live.Stride+px+tw]
				tplRow := tplZero[y*tw : y*tw+tw]
				for x := 0; x < tw; x++ {
					num += float64(liveRow[x]) * tplRow[x]
				}
			}
			ws := windowSum(sum, px, py)
			wsq := windowSum(sqSum, px, py)
			winVar := wsq - ws*ws/n
			denom := math.Sqrt(winVar * tplNormSq)
			if denom > 1e-9 {
				row[px] = num / denom
			}
			// Flat window or flat template: leave score at 0.
		}
		out[py] = row
	}
	return out
}

// Locate finds tpl within live and returns the winning top-left offset and
// its confidence. The bool result is false when no cell meets the threshold
// or the live frame is smaller than the template, an expected steady-state
// outcome rather than an error.
func (m *Matcher) Locate(live, tpl image.Image, threshold float64) (image.Point, float64, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	scores := ScoreMap(ToGray(live), ToGray(tpl))
	if scores == nil {
		return image.Point{}, 0, false
	}

	switch m.policy {
	case BestAboveThreshold:
		best := image.Point{}
		bestScore := math.Inf(-1)
		for y, row := range scores {
			for x, s := range row {
				if s > bestScore {
					bestScore = s
					best = image.Point{X: x, Y: y}
				}
			}
		}
		if bestScore >= threshold {
			return best, bestScore, true
		}
	default: // FirstAboveThreshold
		for y, row := range scores {
			for x, s := range row {
				if s >= threshold {
					return image.Point{X: x, Y: y}, s, true
				}
			}
		}
	}
	return image.Point{}, 0, false
}

// Match locates a stored template on a live frame. The raster img must be
// the template's pixel content; metadata comes from tpl.
func (m *Matcher) Match(live image.Image, tpl model.Template, img image.Image, threshold float64) (model.MatchResult, bool) {
	pt, score, ok := m.Locate(live, img, threshold)
	if !ok {
		return model.MatchResult{}, false
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	return model.NewMatchResult(tpl.Name, pt.X, pt.Y, w, h, score), true
}

// MatchAll applies Match independently per template against the same frame,
// so all results are spatially consistent. Templates whose rasters cannot be
// loaded are logged and skipped; the batch never aborts because of one bad
// file. The result contains an entry iff a match was found.
func (m *Matcher) MatchAll(live image.Image, templates map[string]model.Template, src ImageSource, threshold float64) map[string]model.MatchResult {
	results := make(map[string]model.MatchResult)
	for name, tpl := range templates {
		img, err := src.Image(tpl)
		if err != nil {
			m.logger.Warn("skipping template",
				zap.String("name", name),
				zap.String("file", tpl.File),
				zap.Error(err))
			continue
		}
		if res, ok := m.Match(live, tpl, img, threshold); ok {
			results[name] = res
		}
	}
	return results
}
