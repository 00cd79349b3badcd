// Package translator is the vision-language-model boundary: it converts
// screenshots and free-text instructions into structured element lists and
// action descriptors. Everything model-specific (prompts, wire shapes,
// payload extraction) stays inside this package; callers only see the
// canonical types from internal/model.
package translator

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

// Generator abstracts the model call so tests can substitute canned replies.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, imagePNG []byte) (string, error)
}

// Refusal is the explicit "error" result the model returns when it cannot
// satisfy a request. It is a normal outcome: the caller reports it and the
// interactive loop continues.
type Refusal struct {
	Reason string
}

func (r *Refusal) Error() string {
	return fmt.Sprintf("model declined: %s", r.Reason)
}

// Translator turns user requests into canonical ActionDescriptors.
type Translator struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a Translator on top of a Generator.
func New(gen Generator, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{gen: gen, logger: logger.Named("translator")}
}

// IdentifyElements asks the vision model to enumerate clickable UI elements
// on the screenshot. Elements with invalid bounding boxes are dropped.
func (t *Translator) IdentifyElements(ctx context.Context, screenshotPNG []byte) ([]model.Element, error) {
	reply, err := t.gen.GenerateContent(ctx, identifyPrompt, screenshotPNG)
	if err != nil {
		return nil, fmt.Errorf("identify elements: %w", err)
	}
	elements, err := ExtractJSON[[]model.Element](reply)
	if err != nil {
		return nil, fmt.Errorf("identify elements: %w", err)
	}
	valid := model.FilterElements(*elements, nil, nil)
	t.logger.Info("identified elements",
		zap.Int("total", len(*elements)),
		zap.Int("valid", len(valid)))
	return valid, nil
}

// namedActionReply is the wire shape of the basic-mode selection response.
type namedActionReply struct {
	TargetElement string            `json:"target_element"`
	Action        string            `json:"action"`
	Parameters    namedActionParams `json:"action_parameters"`
	Reasoning     string            `json:"reasoning"`
	Error         string            `json:"error"`
}

type namedActionParams struct {
	EndTarget string   `json:"end_target"`
	Content   string   `json:"content"`
	Keys      []string `json:"keys"`
	Direction string   `json:"direction"`
	Seconds   int      `json:"seconds"`
	Message   string   `json:"message"`
}

// SelectAction maps (elements, request) to a canonical action targeting a
// named element. The target is later re-located on screen by template
// matching, so no coordinates appear in this vocabulary.
func (t *Translator) SelectAction(ctx context.Context, request string, elements []model.Element) (model.ActionDescriptor, error) {
	reply, err := t.gen.GenerateContent(ctx, selectActionPrompt(request, elements), nil)
	if err != nil {
		return model.ActionDescriptor{}, fmt.Errorf("select action: %w", err)
	}
	parsed, err := ExtractJSON[namedActionReply](reply)
	if err != nil {
		return model.ActionDescriptor{}, fmt.Errorf("select action: %w", err)
	}
	if parsed.Error != "" {
		return model.ActionDescriptor{}, &Refusal{Reason: parsed.Error}
	}
	kind, err := model.ParseActionKind(parsed.Action)
	if err != nil {
		return model.ActionDescriptor{}, fmt.Errorf("select action: %w", err)
	}
	return model.ActionDescriptor{
		Target: parsed.TargetElement,
		Kind:   kind,
		Params: model.ActionParams{
			EndTarget: parsed.Parameters.EndTarget,
			Content:   parsed.Parameters.Content,
			Keys:      parsed.Parameters.Keys,
			Direction: parsed.Parameters.Direction,
			Seconds:   parsed.Parameters.Seconds,
			Message:   parsed.Parameters.Message,
		},
		Reasoning: parsed.Reasoning,
	}, nil
}

// boxActionReply is the wire shape of the advanced-mode selection response.
// Parameter values arrive as strings (box coordinates as "[x1, y1, x2, y2]"
// literals), mirroring the call-style vocabulary.
type boxActionReply struct {
	ActionName string         `json:"action_name"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
	Error      string         `json:"error"`
}

// SelectBoxAction maps (elements, request) to a canonical action carrying
// absolute bounding boxes. The box-call vocabulary is normalized here and
// never leaks past the translator boundary.
func (t *Translator) SelectBoxAction(ctx context.Context, request string, elements []model.Element) (model.ActionDescriptor, error) {
	reply, err := t.gen.GenerateContent(ctx, selectBoxActionPrompt(request, elements), nil)
	if err != nil {
		return model.ActionDescriptor{}, fmt.Errorf("select box action: %w", err)
	}
	parsed, err := ExtractJSON[boxActionReply](reply)
	if err != nil {
		return model.ActionDescriptor{}, fmt.Errorf("select box action: %w", err)
	}
	if parsed.Error != "" {
		return model.ActionDescriptor{}, &Refusal{Reason: parsed.Error}
	}
	kind, err := model.ParseActionKind(parsed.ActionName)
	if err != nil {
		return model.ActionDescriptor{}, fmt.Errorf("select box action: %w", err)
	}

	desc := model.ActionDescriptor{Kind: kind, Reasoning: parsed.Reasoning}
	p := parsed.Parameters

	if s, ok := stringParam(p, "start_box"); ok {
		box, err := model.ParseBoxString(s)
		if err != nil {
			return model.ActionDescriptor{}, fmt.Errorf("select box action: %w", err)
		}
		desc.Params.StartBox = &box
	}
	if s, ok := stringParam(p, "end_box"); ok {
		box, err := model.ParseBoxString(s)
		if err != nil {
			return model.ActionDescriptor{}, fmt.Errorf("select box action: %w", err)
		}
		desc.Params.EndBox = &box
	}
	if s, ok := stringParam(p, "key"); ok {
		desc.Params.Keys = model.ParseKeyCombo(s)
	}
	if s, ok := stringParam(p, "content"); ok {
		desc.Params.Content = s
	}
	if s, ok := stringParam(p, "direction"); ok {
		desc.Params.Direction = s
	}
	if s, ok := stringParam(p, "message"); ok {
		desc.Params.Message = s
	}
	desc.Params.Seconds = intParam(p, "seconds")
	return desc, nil
}

func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
