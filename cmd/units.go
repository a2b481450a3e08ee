package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/nicoberrocal/arenaCore/config"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the loaded unit templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader(dataPath)
		templates, err := loader.Templates()
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}

		ids := make([]string, 0, len(templates.Units))
		for id := range templates.Units {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}))
		table.Header("ID", "NAME", "COST", "HP", "AD", "RANGE", "TRAITS", "ABILITY")
		for _, id := range ids {
			tmpl := templates.Units[id]
			table.Append(
				id,
				tmpl.Name,
				fmt.Sprint(tmpl.Cost),
				fmt.Sprintf("%.0f", tmpl.Stats.BaseHP),
				fmt.Sprintf("%.0f", tmpl.Stats.BaseAttackDamage),
				fmt.Sprint(tmpl.Stats.BaseAttackRange),
				strings.Join(tmpl.Traits, ","),
				tmpl.Ability,
			)
		}
		table.Render()
		return nil
	},
}
