package cmd

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long:  "Capture the primary display (or a region of it) as PNG, to a file, the timestamped archive, or stdout as base64.",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("region", "", "Capture region as \"x1,y1,x2,y2\" (default: full screen)")
	screenshotCmd.Flags().Bool("save", false, "Also save to the timestamped screenshot archive")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	regionStr, _ := cmd.Flags().GetString("region")
	save, _ := cmd.Flags().GetBool("save")

	var img image.Image
	if regionStr != "" {
		box, err := model.ParseBoxString(regionStr)
		if err != nil {
			return err
		}
		if !box.Valid() {
			return fmt.Errorf("region %v has non-positive area", box)
		}
		img, err = a.capturer.Region(box.Rect())
		if err != nil {
			return err
		}
	} else {
		img, err = a.capturer.FullScreen()
		if err != nil {
			return err
		}
	}

	if save {
		path, err := a.capturer.SaveTimestamped(img)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", path)
	}

	data, err := capture.PNGBytes(img)
	if err != nil {
		return err
	}
	if outputPath != "" {
		return os.WriteFile(outputPath, data, 0o644)
	}

	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
