package model

import "image"

// Template is a cropped reference raster of one UI element, persisted by the
// store and used later to re-locate that element by appearance.
type Template struct {
	Name        string `json:"name"                  yaml:"name"`
	Key         string `json:"key"                   yaml:"key"`
	File        string `json:"file"                  yaml:"file"`
	Box         Box    `json:"bounding_box"          yaml:"bounding_box"`
	Type        string `json:"type,omitempty"        yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// MatchResult is the outcome of locating one template on a live frame.
// Confidence is the normalized cross-correlation score at the winning cell,
// read directly from the score map. Ephemeral, never persisted.
type MatchResult struct {
	Name       string      `json:"name"       yaml:"name"`
	Center     image.Point `json:"-"          yaml:"-"`
	CenterXY   [2]int      `json:"center"     yaml:"center"`
	Box        Box         `json:"box"        yaml:"box"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
}

// NewMatchResult builds a MatchResult from the top-left pixel of the winning
// score-map cell and the template dimensions.
func NewMatchResult(name string, px, py, w, h int, confidence float64) MatchResult {
	center := image.Point{X: px + w/2, Y: py + h/2}
	return MatchResult{
		Name:       name,
		Center:     center,
		CenterXY:   [2]int{center.X, center.Y},
		Box:        Box{px, py, px + w, py + h},
		Confidence: confidence,
	}
}
