package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nicoberrocal/arenaCore/config"
	"github.com/nicoberrocal/arenaCore/sim"
	"github.com/nicoberrocal/arenaCore/storage"
)

var (
	runSeed    int64
	runRosters string
	runOut     string
)

// rosterFile is the YAML battle description the run and batch commands
// consume.
type rosterFile struct {
	Team0 []sim.Placement `yaml:"team0"`
	Team1 []sim.Placement `yaml:"team1"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one battle and print the outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		rosters, err := loadRosters(runRosters)
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

		result, err := sim.Run([2][]sim.Placement{rosters.Team0, rosters.Team1}, runSeed, cfg, templates)
		if err != nil {
			return err
		}

		log.Info().
			Int64("seed", runSeed).
			Int("ticks", result.TotalTicks).
			Float64("seconds", result.DurationSeconds).
			Msg("battle finished")

		printOutcome(result)

		if runOut != "" {
			blob, err := json.MarshalIndent(result.Trace, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(runOut, blob, 0o644); err != nil {
				return fmt.Errorf("write trace: %w", err)
			}
			log.Info().Str("path", runOut).Int("events", len(result.Trace.Events)).Msg("trace written")
		}

		if dbPath != "" {
			db, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.InsertTrace(result.Trace); err != nil {
				return fmt.Errorf("persist trace: %w", err)
			}
			log.Info().Str("id", result.Trace.ID.Hex()).Msg("trace stored")
		}

		return nil
	},
}

func init() {
	runCmd.Flags().Int64Var(&runSeed, "seed", 12345, "random seed")
	runCmd.Flags().StringVar(&runRosters, "rosters", "battle.yaml", "YAML file with team0/team1 placements")
	runCmd.Flags().StringVar(&runOut, "out", "", "write the full trace JSON to this path")
}

func loadRosters(path string) (*rosterFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rosters: %w", err)
	}
	var rosters rosterFile
	if err := yaml.Unmarshal(raw, &rosters); err != nil {
		return nil, fmt.Errorf("parse rosters: %w", err)
	}
	if len(rosters.Team0) == 0 || len(rosters.Team1) == 0 {
		return nil, fmt.Errorf("rosters need units on both teams")
	}
	return &rosters, nil
}

func printOutcome(result sim.Result) {
	winner := "draw"
	if result.WinnerTeam != nil {
		winner = fmt.Sprintf("team %d", *result.WinnerTeam)
	}
	fmt.Printf("\nWinner: %s after %d ticks (%.1fs)\n\n", winner, result.TotalTicks, result.DurationSeconds)

	if len(result.Survivors) == 0 {
		return
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
	}))
	table.Header("SURVIVOR", "TEAM", "HP", "MAX_HP")
	for _, s := range result.Survivors {
		table.Append(
			fmt.Sprint(s["id"]),
			fmt.Sprint(s["team"]),
			fmt.Sprint(s["hp"]),
			fmt.Sprint(s["max_hp"]),
		)
	}
	table.Render()
}
