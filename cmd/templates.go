package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/output"
)

// TemplatesResult is the output of the templates command.
type TemplatesResult struct {
	OK        bool             `yaml:"ok"        json:"ok"`
	Dir       string           `yaml:"dir"       json:"dir"`
	Count     int              `yaml:"count"     json:"count"`
	Templates []model.Template `yaml:"templates" json:"templates"`
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List stored element templates",
	Long:  "List the templates persisted in the store directory, with their storage keys and bounding boxes.",
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	all := a.store.All()
	templates := make([]model.Template, 0, len(all))
	for _, tpl := range all {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })

	return output.Print(TemplatesResult{
		OK:        true,
		Dir:       a.store.Dir(),
		Count:     len(templates),
		Templates: templates,
	})
}
