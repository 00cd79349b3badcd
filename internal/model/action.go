package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind identifies one automation primitive.
type ActionKind string

const (
	ActionClick       ActionKind = "click"
	ActionDoubleClick ActionKind = "double_click"
	ActionRightClick  ActionKind = "right_click"
	ActionDrag        ActionKind = "drag"
	ActionType        ActionKind = "type"
	ActionHotkey      ActionKind = "hotkey"
	ActionScroll      ActionKind = "scroll"
	ActionWait        ActionKind = "wait"
	ActionFinished    ActionKind = "finished"
	ActionCallUser    ActionKind = "call_user"
)

// ParseActionKind converts a string to an ActionKind, accepting the aliases
// used by the box-call action vocabulary (left_double, right_single).
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "click":
		return ActionClick, nil
	case "double_click", "left_double":
		return ActionDoubleClick, nil
	case "right_click", "right_single":
		return ActionRightClick, nil
	case "drag":
		return ActionDrag, nil
	case "type":
		return ActionType, nil
	case "hotkey":
		return ActionHotkey, nil
	case "scroll":
		return ActionScroll, nil
	case "wait":
		return ActionWait, nil
	case "finished":
		return ActionFinished, nil
	case "call_user":
		return ActionCallUser, nil
	default:
		return "", fmt.Errorf("unknown action kind: %q", s)
	}
}

// ActionParams carries the kind-specific parameters of an action. Only the
// fields relevant to the Kind are populated.
type ActionParams struct {
	EndTarget string   `json:"end_target,omitempty" yaml:"end_target,omitempty"` // drag: element to drop on
	Content   string   `json:"content,omitempty"    yaml:"content,omitempty"`    // type: literal text
	Keys      []string `json:"keys,omitempty"       yaml:"keys,omitempty"`       // hotkey: modifier combo
	Direction string   `json:"direction,omitempty"  yaml:"direction,omitempty"`  // scroll: up/down/left/right
	Clicks    int      `json:"clicks,omitempty"     yaml:"clicks,omitempty"`     // scroll: tick count
	Seconds   int      `json:"seconds,omitempty"    yaml:"seconds,omitempty"`    // wait
	Message   string   `json:"message,omitempty"    yaml:"message,omitempty"`    // call_user
	StartBox  *Box     `json:"start_box,omitempty"  yaml:"start_box,omitempty"`  // box-call actions
	EndBox    *Box     `json:"end_box,omitempty"    yaml:"end_box,omitempty"`    // box-call drag
}

// ActionDescriptor is the single canonical description of one automation
// step. The translator normalizes both model vocabularies (named element
// actions and bounding-box call actions) into this shape; the dispatcher
// consumes it exactly once.
type ActionDescriptor struct {
	Target    string       `json:"target_element,omitempty" yaml:"target_element,omitempty"`
	Kind      ActionKind   `json:"action"                   yaml:"action"`
	Params    ActionParams `json:"params,omitempty"         yaml:"params,omitempty"`
	Reasoning string       `json:"reasoning,omitempty"      yaml:"reasoning,omitempty"`
}

// ParseBoxString parses a box-call coordinate string like
// "[100, 200, 140, 240]" (with or without brackets) into a Box.
func ParseBoxString(s string) (Box, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("invalid box string %q: expected 4 coordinates", s)
	}
	var b Box
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Box{}, fmt.Errorf("invalid box string %q: %w", s, err)
		}
		b[i] = v
	}
	return b, nil
}

// ParseKeyCombo splits a combo string like "ctrl+shift+t" into its keys.
func ParseKeyCombo(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, "+") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, strings.ToLower(k))
		}
	}
	return keys
}
