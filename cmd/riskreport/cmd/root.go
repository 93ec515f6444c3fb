package cmd

import (
	"github.com/spf13/cobra"

	"asxPaperBot/internal/adapters/logger"
	"asxPaperBot/internal/adapters/sqlite"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "riskreport",
	Short: "Inspect a paper-trading journal",
	Long: `riskreport reads the SQLite trade journal written by the paper
trading run and reports on it:

  - stats    aggregate statistics over the stored trades
  - trades   the individual closed trades
  - events   the recorded risk-limit evaluations
  - export   write the trades to an .xlsx workbook`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/papertrader.db", "path to the journal database")
}

// openJournal opens the journal read-side for a subcommand.
func openJournal() (*sqlite.Journal, error) {
	return sqlite.NewJournal(sqlite.Config{
		DBPath: dbPath,
		Logger: logger.NewStdLogger(logger.LevelWarn),
	})
}
