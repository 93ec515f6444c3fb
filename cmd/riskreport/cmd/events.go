package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the recorded risk-limit evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal()
		if err != nil {
			return err
		}
		defer journal.Close()

		events, err := journal.RiskEvents(cmd.Context(), eventsLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Time", "Status", "Max DD", "Daily DD", "Heat", "Balance"})
		for _, e := range events {
			t.AppendRow(table.Row{
				e.Time.Format("2006-01-02 15:04"),
				e.Status,
				fmt.Sprintf("%.2f%%", e.MaxDrawdown*100),
				fmt.Sprintf("%.2f%%", e.DailyDrawdown*100),
				fmt.Sprintf("%.2f%%", e.PortfolioHeat*100),
				fmt.Sprintf("%.2f", e.Balance),
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "maximum rows to list (0 = all)")
	rootCmd.AddCommand(eventsCmd)
}
