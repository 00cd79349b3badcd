package translator

import (
	"errors"
	"testing"
)

type payload struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

func TestExtractJSON_StrictParse(t *testing.T) {
	got, err := ExtractJSON[payload](`{"action": "click", "target": "ok button"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != "click" || got.Target != "ok button" {
		t.Errorf("parsed = %+v", got)
	}
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	reply := "Here is the action to take:\n```json\n{\"action\": \"drag\", \"target\": \"slider\"}\n```\nLet me know if that works."
	got, err := ExtractJSON[payload](reply)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != "drag" || got.Target != "slider" {
		t.Errorf("parsed = %+v", got)
	}
}

func TestExtractJSON_BalancedSubstring(t *testing.T) {
	reply := `I think the best step is {"action": "type", "target": "search field"} based on the layout.`
	got, err := ExtractJSON[payload](reply)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != "type" || got.Target != "search field" {
		t.Errorf("parsed = %+v", got)
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	reply := `Result: {"action": "type", "target": "code {editor}"} done.`
	got, err := ExtractJSON[payload](reply)
	if err != nil {
		t.Fatal(err)
	}
	if got.Target != "code {editor}" {
		t.Errorf("target = %q", got.Target)
	}
}

func TestExtractJSON_ArrayPayload(t *testing.T) {
	reply := "The elements are: [{\"action\": \"a\"}, {\"action\": \"b\"}] as requested."
	got, err := ExtractJSON[[]payload](reply)
	if err != nil {
		t.Fatal(err)
	}
	if len(*got) != 2 || (*got)[1].Action != "b" {
		t.Errorf("parsed = %+v", got)
	}
}

func TestExtractJSON_NoPayload(t *testing.T) {
	for _, reply := range []string{
		"",
		"I cannot find any clickable elements on this screen.",
		"The brackets are { unbalanced",
	} {
		_, err := ExtractJSON[payload](reply)
		if err == nil {
			t.Errorf("expected error for %q", reply)
			continue
		}
		if !errors.Is(err, ErrNoPayload) {
			t.Errorf("error for %q should wrap ErrNoPayload, got %v", reply, err)
		}
	}
}
