package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/vision"
)

// SimilarityResult is the output of the similarity command.
type SimilarityResult struct {
	OK     bool    `yaml:"ok"     json:"ok"`
	Metric string  `yaml:"metric" json:"metric"`
	Score  float64 `yaml:"score"  json:"score"`
}

var similarityCmd = &cobra.Command{
	Use:   "similarity <image-a> <image-b>",
	Short: "Compare two captures for near-equality",
	Long: `Compute a similarity score in [0,1] between two images, 1.0 meaning
identical. If dimensions differ, the second image is resized to the first's
dimensions before comparing.

The primary metric is structural similarity over grayscale windows; --ncc
selects the normalized-cross-correlation fallback instead. The two metrics
are not numerically comparable.`,
	Args: cobra.ExactArgs(2),
	RunE: runSimilarity,
}

func init() {
	rootCmd.AddCommand(similarityCmd)
	similarityCmd.Flags().Bool("ncc", false, "Use the whole-frame NCC fallback metric")
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	a, err := capture.LoadPNG(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	b, err := capture.LoadPNG(args[1])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[1], err)
	}

	useNCC, _ := cmd.Flags().GetBool("ncc")
	result := SimilarityResult{OK: true, Metric: "ssim"}
	if useNCC {
		result.Metric = "ncc"
		result.Score = vision.SimilarityNCC(a, b)
	} else {
		result.Score = vision.Similarity(a, b)
	}
	return output.Print(result)
}
