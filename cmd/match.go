package cmd

import (
	"fmt"
	"image"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

// MatchOutput is the output of the match command.
type MatchOutput struct {
	OK      bool                `yaml:"ok"      json:"ok"`
	Action  string              `yaml:"action"  json:"action"`
	Total   int                 `yaml:"total"   json:"total"`
	Matches []model.MatchResult `yaml:"matches" json:"matches"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Locate stored templates on the live screen",
	Long: `Match stored templates against a fresh screen capture using normalized
cross-correlation and report center coordinates plus confidence.

With --name, only that template is matched; otherwise all stored templates
are matched against the same frame. A template that is not found is a normal
outcome (the target is not currently visible), not an error.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().String("name", "", "Match a single template by element name")
	matchCmd.Flags().Float64("confidence", 0, "Confidence threshold (default from config)")
	matchCmd.Flags().String("live", "", "Match against this image file instead of capturing the screen")
}

func runMatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	confVal, _ := cmd.Flags().GetFloat64("confidence")
	confidence := confidenceFlag(confVal)
	livePath, _ := cmd.Flags().GetString("live")

	var live image.Image
	if livePath != "" {
		live, err = capture.LoadPNG(livePath)
	} else {
		live, err = a.capturer.FullScreen()
	}
	if err != nil {
		return err
	}

	var matches []model.MatchResult
	if name != "" {
		tpl, ok := a.store.Get(name)
		if !ok {
			return fmt.Errorf("no template stored for %q", name)
		}
		img, err := a.store.Image(tpl)
		if err != nil {
			return err
		}
		if res, ok := a.matcher.Match(live, tpl, img, confidence); ok {
			matches = append(matches, res)
		}
	} else {
		found := a.matcher.MatchAll(live, a.store.All(), a.store, confidence)
		for _, res := range found {
			matches = append(matches, res)
		}
		sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	}

	if matches == nil {
		matches = []model.MatchResult{}
	}
	return output.Print(MatchOutput{
		OK:      true,
		Action:  "match",
		Total:   len(matches),
		Matches: matches,
	})
}
