package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

var scrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Scroll at an element or at coordinates",
	Long: `Scroll the wheel at a screen position. With --name, the stored element is
re-located and the scroll happens over its center; otherwise --x/--y give
the position directly (defaulting to the pointer's current location).`,
	RunE: runScroll,
}

func init() {
	rootCmd.AddCommand(scrollCmd)
	scrollCmd.Flags().String("name", "", "Scroll over a stored element")
	scrollCmd.Flags().Int("x", 0, "Scroll at absolute X screen coordinate")
	scrollCmd.Flags().Int("y", 0, "Scroll at absolute Y screen coordinate")
	scrollCmd.Flags().String("direction", "down", "Scroll direction (up, down, left, right)")
	scrollCmd.Flags().Int("clicks", 3, "Number of wheel clicks")
	scrollCmd.Flags().Float64("confidence", 0, "Confidence threshold for --name (default from config)")
}

func runScroll(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	direction, _ := cmd.Flags().GetString("direction")
	clicks, _ := cmd.Flags().GetInt("clicks")
	confVal, _ := cmd.Flags().GetFloat64("confidence")
	confidence := confidenceFlag(confVal)

	desc := model.ActionDescriptor{Kind: model.ActionScroll, Target: name}
	desc.Params.Direction = direction
	desc.Params.Clicks = clicks
	result := ActionResult{OK: true, Action: string(model.ActionScroll), Target: name}

	if name == "" {
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
