package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/headline-service/internal/delivery/http/response"
)

var scrapeSite string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape one site and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnvironment(ctx, cfg, zap.L())
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Scraper.Scrape(ctx, scrapeSite)
		if err != nil {
			return eris.Wrap(err, response.ErrorFetchFailed)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if body, ok := response.NewHeadlinesResponse(result.Records); ok {
			return enc.Encode(body)
		}
		return enc.Encode(response.NewNotFoundResponse())
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSite, "site", "", "site name, e.g. g1 or cnn")
	_ = scrapeCmd.MarkFlagRequired("site")
	rootCmd.AddCommand(scrapeCmd)
}
