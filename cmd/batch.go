package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nicoberrocal/arenaCore/config"
	"github.com/nicoberrocal/arenaCore/sim"
)

var (
	batchRosters string
	batchSeed    int64
	batchCount   int
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the same rosters across a seed range and report win rates",
	Long: "Runs N simulations with consecutive seeds. Each simulation owns its " +
		"state exclusively, so the batch fans out across goroutines.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		rosters, err := loadRosters(batchRosters)
		if err != nil {
			return err
		}

		loader := config.NewLoader(dataPath)
		templates, err := loader.Templates()
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
		cfg, err := loader.SimulationConfig()
		if err != nil {
			return err
		}

		var mu sync.Mutex
		wins := map[string]int{}
		totalTicks := 0

		var g errgroup.Group
		g.SetLimit(batchWorkers)

		for i := 0; i < batchCount; i++ {
			seed := batchSeed + int64(i)
			g.Go(func() error {
				result, err := sim.Run([2][]sim.Placement{rosters.Team0, rosters.Team1}, seed, cfg, templates)
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}

				outcome := "draw"
				if result.WinnerTeam != nil {
					outcome = fmt.Sprintf("team%d", *result.WinnerTeam)
				}

				mu.Lock()
				wins[outcome]++
				totalTicks += result.TotalTicks
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		log.Info().Int("battles", batchCount).Msg("batch finished")

		table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}))
		table.Header("OUTCOME", "COUNT", "RATE")
		for _, outcome := range []string{"team0", "team1", "draw"} {
			table.Append(
				outcome,
				fmt.Sprint(wins[outcome]),
				fmt.Sprintf("%.1f%%", 100*float64(wins[outcome])/float64(batchCount)),
			)
		}
		table.Render()
		fmt.Printf("\nAverage battle length: %.1f ticks\n", float64(totalTicks)/float64(batchCount))

		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchRosters, "rosters", "battle.yaml", "YAML file with team0/team1 placements")
	batchCmd.Flags().Int64Var(&batchSeed, "seed", 1, "first seed of the range")
	batchCmd.Flags().IntVar(&batchCount, "count", 100, "number of simulations")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "parallel simulations")
}
