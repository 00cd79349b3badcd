package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

var hotkeyCmd = &cobra.Command{
	Use:   "hotkey <combo>",
	Short: "Press a key combination",
	Long: `Press a key combination given as plus-separated keys, modifiers first,
for example "ctrl+c" or "ctrl+shift+t". A single key name is also valid.`,
	Args: cobra.ExactArgs(1),
	RunE: runHotkey,
}

func init() {
	rootCmd.AddCommand(hotkeyCmd)
}

func runHotkey(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	keys := model.ParseKeyCombo(args[0])
	if len(keys) == 0 {
		return fmt.Errorf("empty key combo %q", args[0])
	}

	desc := model.ActionDescriptor{Kind: model.ActionHotkey}
	desc.Params.Keys = keys
	if err := a.dispatcher.Execute(desc, nil); err != nil {
		return err
	}
	return output.Print(ActionResult{OK: true, Action: string(model.ActionHotkey), Target: args[0]})
}
