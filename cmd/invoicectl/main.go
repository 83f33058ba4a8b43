// invoicectl is the back-office command line for the invoice engine: preview
// or generate a week's invoice, and feed rate documents through the
// suggestion service. It exists so accounting can reproduce any invoice
// computation outside the web flow.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jdvries/transportdesk/internal/config"
	"github.com/jdvries/transportdesk/internal/db"
	"github.com/jdvries/transportdesk/internal/logger"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Generate and inspect weekly invoices from the command line",
	Long: `invoicectl runs the deterministic invoice engine against the
back-office database. The same computation backs the web preview and the
approval flow, so a preview here reproduces the exact figures of any
generated invoice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Setup(logger.Config{Level: logLevel, Format: "console"})
	},
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// openDB connects using the standard environment configuration.
func openDB() (*gorm.DB, *config.Config, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	conn, err := db.Connect(cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	return conn, cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
