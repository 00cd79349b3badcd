package model

import (
	"image"
	"testing"
)

func TestBox_Geometry(t *testing.T) {
	b := Box{100, 100, 180, 140}
	if b.Width() != 80 {
		t.Errorf("width = %d, want 80", b.Width())
	}
	if b.Height() != 40 {
		t.Errorf("height = %d, want 40", b.Height())
	}
	if got := b.Center(); got != (image.Point{X: 140, Y: 120}) {
		t.Errorf("center = %v, want (140,120)", got)
	}
	if got := b.Rect(); got != image.Rect(100, 100, 180, 140) {
		t.Errorf("rect = %v", got)
	}
}

func TestBox_Valid(t *testing.T) {
	cases := []struct {
		box  Box
		want bool
	}{
		{Box{0, 0, 10, 10}, true},
		{Box{10, 10, 10, 20}, false},
		{Box{10, 10, 20, 10}, false},
		{Box{20, 20, 10, 10}, false},
	}
	for _, tc := range cases {
		if got := tc.box.Valid(); got != tc.want {
			t.Errorf("Valid(%v) = %v, want %v", tc.box, got, tc.want)
		}
	}
}

func TestBox_Validate(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	if err := (Box{10, 10, 50, 50}).Validate(bounds); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Box{10, 10, 10, 50}).Validate(bounds); err == nil {
		t.Error("expected error for zero-width box")
	}
	if err := (Box{50, 50, 150, 90}).Validate(bounds); err == nil {
		t.Error("expected error for out-of-bounds box")
	}
}

func TestFilterElements(t *testing.T) {
	elements := []Element{
		{Name: "ok button", Type: "button", Box: Box{10, 10, 50, 30}},
		{Name: "logo", Type: "icon", Box: Box{60, 10, 90, 40}},
		{Name: "degenerate", Type: "button", Box: Box{5, 5, 5, 5}},
		{Name: "sidebar link", Type: "link", Box: Box{10, 60, 40, 80}},
	}

	all := FilterElements(elements, nil, nil)
	if len(all) != 3 {
		t.Fatalf("got %d elements, want 3 (invalid box dropped)", len(all))
	}

	buttons := FilterElements(elements, map[string]bool{"button": true}, nil)
	if len(buttons) != 1 || buttons[0].Name != "ok button" {
		t.Errorf("type filter returned %v", buttons)
	}

	region := Box{0, 0, 55, 55}
	top := FilterElements(elements, nil, &region)
	if len(top) != 1 || top[0].Name != "ok button" {
		t.Errorf("region filter returned %v", top)
	}
}
