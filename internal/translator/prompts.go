package translator

import (
	"encoding/json"
	"fmt"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

const identifyPrompt = `Analyze this desktop screenshot and identify all clickable UI elements.
For each element provide:
- type: The type of UI element (icon, button, menu, checkbox, etc.)
- name: A descriptive name that uniquely identifies this element
- bounding_box: Coordinates as [x1, y1, x2, y2] where (x1,y1) is top-left and (x2,y2) is bottom-right
- description: A brief description of what this element does or represents

Format your response as a JSON array of objects, each with the properties listed above.
Be precise with the bounding boxes to ensure they tightly contain only the specific element.`

// elementSummary is the compact element shape serialized into selection
// prompts: name, type, and description only, without coordinates.
type elementSummary struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func summarizeElements(elements []model.Element) []elementSummary {
	out := make([]elementSummary, 0, len(elements))
	for _, el := range elements {
		typ := el.Type
		if typ == "" {
			typ = "unknown"
		}
		out = append(out, elementSummary{Name: el.Name, Type: typ, Description: el.Description})
	}
	return out
}

// selectActionPrompt asks which named element to interact with and how.
func selectActionPrompt(request string, elements []model.Element) string {
	summary, _ := json.Marshal(summarizeElements(elements))
	return fmt.Sprintf(`User Request: %q

Available Desktop Elements: %s

Based on the user's request, which desktop element should be interacted with?
Return a JSON object with:
{
    "target_element": "name of element to interact with",
    "action": "click",
    "action_parameters": {},
    "reasoning": "brief explanation"
}

Available actions are:
- click: Simple click on element
- double_click: Double-click on element
- right_click: Right-click on element
- drag: Drag from one element to another (needs end_target parameter)
- type: Type text (needs content parameter with the text)
- hotkey: Press keyboard shortcut (needs keys parameter, e.g. ["ctrl", "c"])
- scroll: Scroll in specified direction (needs direction parameter: "up", "down", "left", "right")

If no suitable element found, return {"error": "reason"}.`, request, summary)
}

// boxActionVocabulary is the bounding-box call-style action list offered to
// the model in advanced mode.
var boxActionVocabulary = []string{
	"click(start_box='[x1, y1, x2, y2]')",
	"left_double(start_box='[x1, y1, x2, y2]')",
	"right_single(start_box='[x1, y1, x2, y2]')",
	"drag(start_box='[x1, y1, x2, y2]', end_box='[x3, y3, x4, y4]')",
	"hotkey(key='key1+key2')",
	"type(content='text to type')",
	"scroll(start_box='[x1, y1, x2, y2]', direction='down or up or right or left')",
	"wait()",
	"finished()",
	"call_user(message='Help needed')",
}

// selectBoxActionPrompt asks for one advanced action chosen from the
// bounding-box vocabulary, with full element boxes in the context.
func selectBoxActionPrompt(request string, elements []model.Element) string {
	full, _ := json.Marshal(elements)
	vocab, _ := json.MarshalIndent(boxActionVocabulary, "", "  ")
	return fmt.Sprintf(`User Request: %q

Available Desktop Elements: %s

Based on the user's request, determine the best action to take from the following available actions:
%s

Return a JSON object with:
{
    "action_name": "name of action function to call",
    "parameters": {
        "param1": "value1"
    },
    "reasoning": "brief explanation of why this action was chosen"
}

For element selection, use the appropriate bounding_box from the provided elements.
If no suitable action is possible, return {"error": "reason"}.`, request, full, vocab)
}
