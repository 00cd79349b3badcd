package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

// fakeGen returns a canned reply, recording the prompt it was given.
type fakeGen struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGen) GenerateContent(_ context.Context, prompt string, _ []byte) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestIdentifyElements_DropsInvalidBoxes(t *testing.T) {
	gen := &fakeGen{reply: `Here are the elements:
[
  {"name": "ok button", "type": "button", "bounding_box": [10, 10, 50, 30]},
  {"name": "broken", "type": "button", "bounding_box": [50, 50, 50, 50]}
]`}
	tr := New(gen, nil)

	elements, err := tr.IdentifyElements(context.Background(), []byte("png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	if elements[0].Name != "ok button" {
		t.Errorf("element = %+v", elements[0])
	}
	if elements[0].Box != (model.Box{10, 10, 50, 30}) {
		t.Errorf("box = %v", elements[0].Box)
	}
}

func TestIdentifyElements_GeneratorError(t *testing.T) {
	tr := New(&fakeGen{err: errors.New("rate limited")}, nil)
	if _, err := tr.IdentifyElements(context.Background(), nil); err == nil {
		t.Error("expected error")
	}
}

func TestSelectAction_NamedVocabulary(t *testing.T) {
	gen := &fakeGen{reply: `{
  "target_element": "search field",
  "action": "type",
  "action_parameters": {"content": "hello world"},
  "reasoning": "the request asks to enter text"
}`}
	tr := New(gen, nil)

	desc, err := tr.SelectAction(context.Background(), "type hello world into the search box", nil)
	if err != nil {
		t.Fatal(err)
	}
	if desc.Kind != model.ActionType {
		t.Errorf("kind = %q", desc.Kind)
	}
	if desc.Target != "search field" {
		t.Errorf("target = %q", desc.Target)
	}
	if desc.Params.Content != "hello world" {
		t.Errorf("content = %q", desc.Params.Content)
	}
	if desc.Reasoning == "" {
		t.Error("reasoning should be carried through")
	}
}

func TestSelectAction_Refusal(t *testing.T) {
	gen := &fakeGen{reply: `{"error": "no element matches the request"}`}
	tr := New(gen, nil)

	_, err := tr.SelectAction(context.Background(), "click the missing thing", nil)
	var refusal *Refusal
	if !errors.As(err, &refusal) {
		t.Fatalf("expected a Refusal, got %v", err)
	}
	if refusal.Reason != "no element matches the request" {
		t.Errorf("reason = %q", refusal.Reason)
	}
}

func TestSelectAction_UnknownKind(t *testing.T) {
	gen := &fakeGen{reply: `{"target_element": "x", "action": "levitate"}`}
	tr := New(gen, nil)
	if _, err := tr.SelectAction(context.Background(), "do something", nil); err == nil {
		t.Error("expected error for unknown action kind")
	}
}

func TestSelectBoxAction_NormalizesBoxCall(t *testing.T) {
	gen := &fakeGen{reply: "```json\n" + `{
  "action_name": "drag",
  "parameters": {"start_box": "[100, 200, 140, 240]", "end_box": "[300, 200, 340, 240]"},
  "reasoning": "move the card to the done column"
}` + "\n```"}
	tr := New(gen, nil)

	desc, err := tr.SelectBoxAction(context.Background(), "move the card", nil)
	if err != nil {
		t.Fatal(err)
	}
	if desc.Kind != model.ActionDrag {
		t.Errorf("kind = %q", desc.Kind)
	}
	if desc.Params.StartBox == nil || *desc.Params.StartBox != (model.Box{100, 200, 140, 240}) {
		t.Errorf("start box = %v", desc.Params.StartBox)
	}
	if desc.Params.EndBox == nil || *desc.Params.EndBox != (model.Box{300, 200, 340, 240}) {
		t.Errorf("end box = %v", desc.Params.EndBox)
	}
}

func TestSelectBoxAction_Aliases(t *testing.T) {
	gen := &fakeGen{reply: `{"action_name": "left_double", "parameters": {"start_box": "[10, 10, 20, 20]"}}`}
	tr := New(gen, nil)

	desc, err := tr.SelectBoxAction(context.Background(), "open the file", nil)
	if err != nil {
		t.Fatal(err)
	}
	if desc.Kind != model.ActionDoubleClick {
		t.Errorf("kind = %q, want double_click", desc.Kind)
	}
}

func TestSelectBoxAction_KeyCombo(t *testing.T) {
	gen := &fakeGen{reply: `{"action_name": "hotkey", "parameters": {"key": "ctrl+shift+t"}}`}
	tr := New(gen, nil)

	desc, err := tr.SelectBoxAction(context.Background(), "reopen the tab", nil)
	if err != nil {
		t.Fatal(err)
	}
	if desc.Kind != model.ActionHotkey {
		t.Errorf("kind = %q", desc.Kind)
	}
	if len(desc.Params.Keys) != 3 || desc.Params.Keys[2] != "t" {
		t.Errorf("keys = %v", desc.Params.Keys)
	}
}

func TestSelectBoxAction_MalformedBox(t *testing.T) {
	gen := &fakeGen{reply: `{"action_name": "click", "parameters": {"start_box": "[1, 2]"}}`}
	tr := New(gen, nil)
	if _, err := tr.SelectBoxAction(context.Background(), "click it", nil); err == nil {
		t.Error("expected error for malformed box string")
	}
}
