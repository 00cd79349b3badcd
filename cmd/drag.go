package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

var dragCmd = &cobra.Command{
	Use:   "drag",
	Short: "Drag from one element or point to another",
	Long: `Drag the mouse from a start to an end position. Each end is either a stored
element name (re-located on the live screen) or absolute coordinates.`,
	RunE: runDrag,
}

func init() {
	rootCmd.AddCommand(dragCmd)
	dragCmd.Flags().String("from", "", "Start element name")
	dragCmd.Flags().String("to", "", "End element name")
	dragCmd.Flags().Int("from-x", -1, "Start X coordinate")
	dragCmd.Flags().Int("from-y", -1, "Start Y coordinate")
	dragCmd.Flags().Int("to-x", -1, "End X coordinate")
	dragCmd.Flags().Int("to-y", -1, "End Y coordinate")
	dragCmd.Flags().Float64("confidence", 0, "Confidence threshold for named ends (default from config)")
}

func runDrag(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	fromX, _ := cmd.Flags().GetInt("from-x")
	fromY, _ := cmd.Flags().GetInt("from-y")
	toX, _ := cmd.Flags().GetInt("to-x")
	toY, _ := cmd.Flags().GetInt("to-y")
	confVal, _ := cmd.Flags().GetFloat64("confidence")
	confidence := confidenceFlag(confVal)

	desc := model.ActionDescriptor{Kind: model.ActionDrag, Target: from}
	desc.Params.EndTarget = to
	if from == "" {
		if fromX < 0 || fromY < 0 {
			return fmt.Errorf("specify --from or both --from-x and --from-y")
		}
		box := model.Box{fromX, fromY, fromX + 1, fromY + 1}
		desc.Params.StartBox = &box
	}
	if to == "" {
		if toX < 0 || toY < 0 {
			return fmt.Errorf("specify --to or both --to-x and --to-y")
		}
		box := model.Box{toX, toY, toX + 1, toY + 1}
		desc.Params.EndBox = &box
	}

	result := ActionResult{OK: true, Action: string(model.ActionDrag), Target: from}

	if from == "" && to == "" {
		result.X, result.Y = fromX, fromY
		if err := a.dispatcher.Execute(desc, nil); err != nil {
			return err
		}
		return output.Print(result)
	}

	live, err := a.capturer.FullScreen()
	if err != nil {
		return err
	}
	if from != "" {
		res, err := a.locateTemplate(live, from, confidence)
		if err != nil {
			return err
		}
		result.X, result.Y = res.Center.X, res.Center.Y
		result.Confidence = res.Confidence
	} else {
		result.X, result.Y = fromX, fromY
	}

	if err := a.dispatcher.Execute(desc, a.resolver(live, confidence)); err != nil {
		return err
	}
	return output.Print(result)
}
