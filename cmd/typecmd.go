package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

var typeCmd = &cobra.Command{
	Use:   "type <text>",
	Short: "Type text, optionally into a named element",
	Long: `Type the given text with synthetic keyboard events. With --name, the stored
element is re-located and clicked first so it receives focus; without it,
text goes to whatever currently has focus.`,
	Args: cobra.ExactArgs(1),
	RunE: runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("name", "", "Click this stored element before typing")
	typeCmd.Flags().Float64("confidence", 0, "Confidence threshold for --name (default from config)")
}

func runType(cmd *cobra.Command, args []string) error {
	if args[0] == "" {
		return fmt.Errorf("nothing to type")
	}
	a, err := newApp()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	confVal, _ := cmd.Flags().GetFloat64("confidence")
	confidence := confidenceFlag(confVal)

	desc := model.ActionDescriptor{Kind: model.ActionType, Target: name}
	desc.Params.Content = args[0]
	result := ActionResult{OK: true, Action: string(model.ActionType), Target: name}

	if name == "" {
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
