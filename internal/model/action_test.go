package model

import (
	"reflect"
	"testing"
)

func TestParseActionKind(t *testing.T) {
	cases := []struct {
		in   string
		want ActionKind
	}{
		{"click", ActionClick},
		{"Click", ActionClick},
		{" drag ", ActionDrag},
		{"double_click", ActionDoubleClick},
		{"left_double", ActionDoubleClick},
		{"right_click", ActionRightClick},
		{"right_single", ActionRightClick},
		{"type", ActionType},
		{"hotkey", ActionHotkey},
		{"scroll", ActionScroll},
		{"wait", ActionWait},
		{"finished", ActionFinished},
		{"call_user", ActionCallUser},
	}
	for _, tc := range cases {
		got, err := ParseActionKind(tc.in)
		if err != nil {
			t.Errorf("ParseActionKind(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseActionKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := ParseActionKind("teleport"); err == nil {
		t.Error("expected error for unknown action kind")
	}
}

func TestParseBoxString(t *testing.T) {
	cases := []struct {
		in   string
		want Box
	}{
		{"[100, 200, 140, 240]", Box{100, 200, 140, 240}},
		{"[0,0,1,1]", Box{0, 0, 1, 1}},
		{"10, 20, 30, 40", Box{10, 20, 30, 40}},
		{"  [ 5 , 6 , 7 , 8 ]  ", Box{5, 6, 7, 8}},
	}
	for _, tc := range cases {
		got, err := ParseBoxString(tc.in)
		if err != nil {
			t.Errorf("ParseBoxString(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBoxString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "[1,2,3]", "[1,2,3,4,5]", "[a,b,c,d]"} {
		if _, err := ParseBoxString(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseKeyCombo(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"ctrl+c", []string{"ctrl", "c"}},
		{"Ctrl+Shift+T", []string{"ctrl", "shift", "t"}},
		{"enter", []string{"enter"}},
		{"ctrl + c", []string{"ctrl", "c"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := ParseKeyCombo(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseKeyCombo(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewMatchResult(t *testing.T) {
	res := NewMatchResult("ok button", 100, 100, 80, 40, 0.93)
	if res.CenterXY != [2]int{140, 120} {
		t.Errorf("center = %v, want [140 120]", res.CenterXY)
	}
	if res.Box != (Box{100, 100, 180, 140}) {
		t.Errorf("box = %v", res.Box)
	}
	if res.Confidence != 0.93 {
		t.Errorf("confidence = %v", res.Confidence)
	}
}
