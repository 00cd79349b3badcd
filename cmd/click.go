package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

// ActionResult is the output of a successful direct-dispatch command.
type ActionResult struct {
	OK         bool    `yaml:"ok"                   json:"ok"`
	Action     string  `yaml:"action"               json:"action"`
	Target     string  `yaml:"target,omitempty"     json:"target,omitempty"`
	X          int     `yaml:"x"                    json:"x"`
	Y          int     `yaml:"y"                    json:"y"`
	Confidence float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click on a stored element or at coordinates",
	Long: `Click at absolute screen coordinates, or re-locate a stored template on the
live screen by name and click its center.`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().String("name", "", "Click a stored element by name (template-matched)")
	clickCmd.Flags().Int("x", -1, "Click at absolute X screen coordinate")
	clickCmd.Flags().Int("y", -1, "Click at absolute Y screen coordinate")
	clickCmd.Flags().Bool("double", false, "Double-click")
	clickCmd.Flags().Bool("right", false, "Right-click")
	clickCmd.Flags().Float64("confidence", 0, "Confidence threshold for --name (default from config)")
}

func runClick(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	double, _ := cmd.Flags().GetBool("double")
	right, _ := cmd.Flags().GetBool("right")
	confVal, _ := cmd.Flags().GetFloat64("confidence")
	confidence := confidenceFlag(confVal)

	kind := model.ActionClick
	if double {
		kind = model.ActionDoubleClick
	}
	if right {
		kind = model.ActionRightClick
	}

	result := ActionResult{OK: true, Action: string(kind), Target: name}

	desc := model.ActionDescriptor{Kind: kind, Target: name}
	if name == "" {
		if x < 0 || y < 0 {
			return fmt.Errorf("specify --name or both --x and --y")
		}
		box := model.Box{x, y, x + 1, y + 1}
		desc.Params.StartBox = &box
		result.X, result.Y = x, y
		if err := a.dispatcher.Execute(desc, nil); err != nil {
			return err
		}
		return output.Print(result)
	}

	live, err := a.capturer.FullScreen()
	if err != nil {
		return err
	}
	res, err := a.locateTemplate(live, name, confidence)
	if err != nil {
		return err
	}
	result.X, result.Y = res.Center.X, res.Center.Y
	result.Confidence = res.Confidence

	if err := a.dispatcher.Execute(desc, a.resolver(live, confidence)); err != nil {
		return err
	}
	return output.Print(result)
}
