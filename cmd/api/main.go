package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/headline-service/pkg/config"
	"github.com/user/headline-service/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "headline-service",
	Short:        "Homepage headline scraper",
	Long:         "Renders news homepages in headless Chrome and serves their lead story and other headlines as JSON.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if _, err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
