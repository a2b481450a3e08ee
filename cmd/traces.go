package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/nicoberrocal/arenaCore/storage"
)

var tracesLimit int

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "List stored battle traces",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("no battle store configured (set --db)")
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		battles, err := db.ListBattles(tracesLimit)
		if err != nil {
			return err
		}
		if len(battles) == 0 {
			fmt.Println("no battles stored")
			return nil
		}

		table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}))
		table.Header("ID", "SEED", "WINNER", "TICKS", "SECONDS", "EVENTS", "CREATED")
		for _, b := range battles {
			winner := "draw"
			if b.WinnerTeam != nil {
				winner = fmt.Sprintf("team %d", *b.WinnerTeam)
			}
			table.Append(
				b.ID,
				fmt.Sprint(b.Seed),
				winner,
				fmt.Sprint(b.TotalTicks),
				fmt.Sprintf("%.1f", b.DurationSeconds),
				fmt.Sprint(b.EventCount),
				b.CreatedAt.Format(time.RFC3339),
			)
		}
		table.Render()
		return nil
	},
}

func init() {
	tracesCmd.Flags().IntVar(&tracesLimit, "limit", 20, "maximum rows")
}
