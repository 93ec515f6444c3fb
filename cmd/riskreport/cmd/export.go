package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"asxPaperBot/internal/domain"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored trades to an .xlsx workbook",
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
		if err := writeTradesXLSX(trades, exportOut); err != nil {
			return err
		}
		fmt.Printf("Wrote %d trades to %s\n", len(trades), exportOut)
		return nil
	},
}

func writeTradesXLSX(trades []*domain.ClosedTrade, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const sheet = "Trades"
	fx.SetSheetName(fx.GetSheetName(0), sheet)

	headers := []string{"ID", "Symbol", "Entry Time", "Exit Time", "Entry", "Exit", "Shares", "P&L", "Return %", "Confidence", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
	}

	for row, tr := range trades {
		values := []interface{}{
			tr.ID,
			tr.Symbol,
			tr.EntryTime.Format("2006-01-02 15:04:05"),
			tr.ExitTime.Format("2006-01-02 15:04:05"),
			tr.EntryPrice,
			tr.ExitPrice,
			tr.Shares,
			tr.PnL,
			tr.Return() * 100,
			tr.Confidence,
			string(tr.Reason),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			fx.SetCellValue(sheet, cell, v)
		}
	}

	return fx.SaveAs(path)
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "trades.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
