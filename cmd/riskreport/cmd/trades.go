package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var tradesLimit int

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List the stored closed trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal()
		if err != nil {
			return err
		}
		defer journal.Close()

		trades, err := journal.Trades(cmd.Context(), tradesLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Exit Time", "Symbol", "Shares", "Entry", "Exit", "P&L", "Confidence", "Reason"})
		for _, tr := range trades {
			t.AppendRow(table.Row{
				tr.ExitTime.Format("2006-01-02 15:04"),
				tr.Symbol,
				tr.Shares,
				tr.EntryPrice,
				tr.ExitPrice,
				tr.PnL,
				tr.Confidence,
				tr.Reason,
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	tradesCmd.Flags().IntVar(&tradesLimit, "limit", 0, "maximum rows to list (0 = all)")
	rootCmd.AddCommand(tradesCmd)
}
