package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"asxPaperBot/internal/analytics"
)

var statsBalance float64

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over the stored trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal()
		if err != nil {
			return err
		}
		defer journal.Close()

		trades, err := journal.Trades(cmd.Context(), 0)
		if err != nil {
			return err
		}
		stats := analytics.Compute(trades, statsBalance)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("TRADE STATISTICS")
		t.SetStyle(table.StyleRounded)

		t.AppendRows([]table.Row{
			{"Trades", stats.TotalTrades},
			{"Winners / Losers", fmt.Sprintf("%d / %d", stats.WinningTrades, stats.LosingTrades)},
			{"Win Rate", fmt.Sprintf("%.1f%%", stats.WinRate*100)},
			{"Average Win / Loss", fmt.Sprintf("%.2f / %.2f", stats.AverageWin, stats.AverageLoss)},
			{"Largest Win / Loss", fmt.Sprintf("%.2f / %.2f", stats.LargestWin, stats.LargestLoss)},
			{"Profit Factor", formatProfitFactor(stats.ProfitFactor)},
			{"Total P&L", fmt.Sprintf("%.2f", stats.TotalPnL)},
			{"Account Return", fmt.Sprintf("%.2f%%", stats.AccountReturn*100)},
			{"Sharpe Ratio", fmt.Sprintf("%.2f", stats.SharpeRatio)},
			{"Information Coefficient", fmt.Sprintf("%.3f", stats.InformationCoefficient)},
			{"Max Drawdown", fmt.Sprintf("%.2f%%", stats.MaxDrawdown*100)},
		})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMin: 24, Align: text.AlignLeft},
			{Number: 2, WidthMin: 16, Align: text.AlignRight},
		})
		t.Render()
		return nil
	},
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}

func init() {
	statsCmd.Flags().Float64Var(&statsBalance, "account-size", 10000, "initial balance the stored history started from")
	rootCmd.AddCommand(statsCmd)
}
