package model

import (
	"fmt"
	"image"
)

// Box is a bounding box in screen pixels as [x1, y1, x2, y2], where (x1,y1)
// is the top-left corner and (x2,y2) the bottom-right. Serialized as a JSON
// array, matching the shape the vision model is prompted to produce.
type Box [4]int

// Width returns x2-x1.
func (b Box) Width() int { return b[2] - b[0] }

// Height returns y2-y1.
func (b Box) Height() int { return b[3] - b[1] }

// Center returns the integer center point of the box.
func (b Box) Center() image.Point {
	return image.Point{X: (b[0] + b[2]) / 2, Y: (b[1] + b[3]) / 2}
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b[0], b[1], b[2], b[3])
}

// Valid reports whether the box has positive area (x1<x2 and y1<y2).
func (b Box) Valid() bool {
	return b[0] < b[2] && b[1] < b[3]
}

// In reports whether the box lies entirely within the given image bounds.
func (b Box) In(bounds image.Rectangle) bool {
	return b.Rect().In(bounds)
}

// Validate returns an error describing why the box cannot be used as a
// template crop region within an image of the given bounds.
func (b Box) Validate(bounds image.Rectangle) error {
	if !b.Valid() {
		return fmt.Errorf("bounding box %v has non-positive area", b)
	}
	if !b.In(bounds) {
		return fmt.Errorf("bounding box %v outside image bounds %v", b, bounds)
	}
	return nil
}

// Element is one clickable UI element as enumerated by the vision model.
// Elements are immutable once extracted for a given screenshot generation;
// Name is the unique key used to derive and later re-locate templates.
type Element struct {
	Name        string `json:"name"                  yaml:"name"`
	Type        string `json:"type,omitempty"        yaml:"type,omitempty"`
	Box         Box    `json:"bounding_box"          yaml:"bounding_box"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FilterElements returns the elements matching the given type filter and
// bounding region. An empty types set and nil region match everything.
// Elements with invalid boxes are always dropped.
func FilterElements(elements []Element, types map[string]bool, region *Box) []Element {
	var out []Element
	for _, el := range elements {
		if !el.Box.Valid() {
			continue
		}
		if len(types) > 0 && !types[el.Type] {
			continue
		}
		if region != nil && !el.Box.Rect().Overlaps(region.Rect()) {
			continue
		}
		out = append(out, el)
	}
	return out
}
