package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

// ElementsResult is the output of the elements command.
type ElementsResult struct {
	OK        bool            `yaml:"ok"                  json:"ok"`
	TS        int64           `yaml:"ts"                  json:"ts"`
	Count     int             `yaml:"count"               json:"count"`
	Extracted int             `yaml:"extracted,omitempty" json:"extracted,omitempty"`
	Elements  []model.Element `yaml:"elements"            json:"elements"`
}

var elementsCmd = &cobra.Command{
	Use:   "elements",
	Short: "Enumerate clickable UI elements on the current screen",
	Long: `Capture the screen and ask the vision model to enumerate all clickable UI
elements with bounding boxes. With --extract, a template is cropped and
stored for each element so it can later be re-located by appearance.`,
	RunE: runElements,
}

func init() {
	rootCmd.AddCommand(elementsCmd)
	elementsCmd.Flags().Bool("extract", false, "Crop and store a template per element")
	elementsCmd.Flags().String("types", "", "Only include these element types (comma-separated, e.g. \"button,icon\")")
	elementsCmd.Flags().String("region", "", "Only include elements overlapping \"x1,y1,x2,y2\"")
}

func runElements(cmd *cobra.Command, args []string) error {
	a, err := newAppWithTranslator()
	if err != nil {
		return err
	}

	extract, _ := cmd.Flags().GetBool("extract")
	typesStr, _ := cmd.Flags().GetString("types")
	regionStr, _ := cmd.Flags().GetString("region")

	frame, err := a.capturer.FullScreen()
	if err != nil {
		return err
	}
	pngBytes, err := capture.PNGBytes(frame)
	if err != nil {
		return err
	}

	elements, err := a.translator.IdentifyElements(cmd.Context(), pngBytes)
	if err != nil {
		return err
	}

	types := make(map[string]bool)
	if typesStr != "" {
		for _, t := range strings.Split(typesStr, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types[t] = true
			}
		}
	}
	var region *model.Box
	if regionStr != "" {
		box, err := model.ParseBoxString(regionStr)
		if err != nil {
			return err
		}
		region = &box
	}
	elements = model.FilterElements(elements, types, region)

	result := ElementsResult{
		OK:       true,
		TS:       time.Now().Unix(),
		Count:    len(elements),
		Elements: elements,
	}
	if extract {
		templates := a.store.Extract(frame, elements)
		result.Extracted = len(templates)
	}
	if result.Elements == nil {
		result.Elements = []model.Element{}
	}
	return output.Print(result)
}
