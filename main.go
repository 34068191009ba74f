package main

import (
	"fmt"
	"os"

	"tricks_check/share"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *share.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tricks_check",
	Short: "Credit Tricks of the Trade damage back to the rogue who cast it",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = share.LoadConfig()
		if err != nil {
			return err
		}

		err = share.InitSentry(cfg.SentryDSN)
		if err != nil {
			return err
		}

		logger, err = share.NewLogger(cfg.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, fixCmd, localesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
