package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/translator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interactive automation loop",
	Long: `Read free-text instructions from stdin and execute them against the desktop.

Each instruction runs the full pipeline: capture the screen, ask the vision
model to enumerate clickable elements, translate the instruction into an
action, re-locate the target by template matching, and dispatch the input
events. Every action requires a y/n confirmation before it is dispatched.

Type 'exit' to quit.

Modes:
  basic    - the model picks a named element; the target is re-located on a
             fresh capture by template matching before dispatch
  advanced - the model answers with bounding-box call actions that are
             dispatched at their absolute coordinates`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("mode", "basic", "Interaction mode: basic, advanced")
	runCmd.Flags().Float64("confidence", 0, "Template match confidence threshold (default from config)")
	runCmd.Flags().Bool("yes", false, "Skip the confirmation gate (use with care)")
}

func runRun(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	if mode != "basic" && mode != "advanced" {
		return fmt.Errorf("unknown mode: %s (use basic or advanced)", mode)
	}
	confVal, _ := cmd.Flags().GetFloat64("confidence")
	confidence := confidenceFlag(confVal)
	skipConfirm, _ := cmd.Flags().GetBool("yes")

	a, err := newAppWithTranslator()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Desktop automation (%s mode). Type 'exit' to quit.\n", mode)

	for {
		fmt.Print("\nWhat would you like me to do? ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil // EOF ends the loop
		}
		request := strings.TrimSpace(line)
		if request == "" {
			continue
		}
		if strings.EqualFold(request, "exit") {
			fmt.Println("Exiting.")
			return nil
		}

		// All recoverable errors are reported and the loop proceeds to
		// await the next instruction.
		if err := a.processRequest(ctx, reader, mode, request, confidence, skipConfirm); err != nil {
			logger.Warn("request failed", zap.Error(err))
			fmt.Printf("Could not complete the request: %v\n", err)
		}
	}
}

// processRequest runs one instruction through the capture - translate -
// match - dispatch pipeline.
func (a *app) processRequest(ctx context.Context, reader *bufio.Reader, mode, request string, confidence float64, skipConfirm bool) error {
	fmt.Println("Capturing screen...")
	frame, err := a.capturer.FullScreen()
	if err != nil {
		return err
	}
	if _, err := a.capturer.SaveTimestamped(frame); err != nil {
		logger.Debug("screenshot archive failed", zap.Error(err))
	}
	pngBytes, err := capture.PNGBytes(frame)
	if err != nil {
		return err
	}

	fmt.Println("Analyzing desktop elements...")
	elements, err := a.translator.IdentifyElements(ctx, pngBytes)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d clickable elements\n", len(elements))

	var desc model.ActionDescriptor
	if mode == "basic" {
		fmt.Println("Extracting element templates...")
		templates := a.store.Extract(frame, elements)
		fmt.Printf("Extracted %d templates\n", len(templates))

		desc, err = a.translator.SelectAction(ctx, request, elements)
	} else {
		desc, err = a.translator.SelectBoxAction(ctx, request, elements)
	}
	var refusal *translator.Refusal
	if errors.As(err, &refusal) {
		fmt.Printf("Could not determine what to do: %s\n", refusal.Reason)
		return nil
	}
	if err != nil {
		return err
	}

	describeAction(desc)
	if !skipConfirm && !confirm(reader, "Proceed with this action? (y/n): ") {
		fmt.Println("Action cancelled.")
		return nil
	}

	// Re-capture so matching and dispatch share one frame.
	live, err := a.capturer.FullScreen()
	if err != nil {
		return err
	}

	switch desc.Kind {
	case model.ActionCallUser:
		msg := desc.Params.Message
		if msg == "" {
			msg = "Attention required"
		}
		fmt.Printf("\n!!! %s !!!\n", msg)
		fmt.Print("Press Enter to continue...")
		reader.ReadString('\n')
	case model.ActionFinished:
		fmt.Println("Task completed.")
	}

	if err := a.dispatcher.Execute(desc, a.resolver(live, confidence)); err != nil {
		return err
	}
	fmt.Println("Action completed successfully.")
	return nil
}

// describeAction prints the planned action before the confirmation gate.
func describeAction(desc model.ActionDescriptor) {
	if desc.Target != "" {
		fmt.Printf("\nI'll %s on: %s\n", desc.Kind, desc.Target)
	} else if desc.Params.StartBox != nil {
		c := desc.Params.StartBox.Center()
		fmt.Printf("\nI'll %s at (%d, %d)\n", desc.Kind, c.X, c.Y)
	} else {
		fmt.Printf("\nI'll execute: %s\n", desc.Kind)
	}
	if desc.Reasoning != "" {
		fmt.Printf("Reason: %s\n", desc.Reasoning)
	}
}
