package cmd

import (
	"fmt"

	"github.com/rasnes/marketdash-etl/extract"
	"github.com/rasnes/marketdash-etl/load"
	"github.com/rasnes/marketdash-etl/pipeline"
	"github.com/rasnes/marketdash-etl/utils"
	"github.com/spf13/cobra"
)

// newDomainCmd builds a command that runs fetch, validate and load for a
// single data domain.
func newDomainCmd(use, short, domain string, policy load.SentimentPolicy) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return fmt.Errorf("error creating pipeline: %w", err)
			}
			defer p.Close()

			res, err := p.RunDomain(domain, policy)
			if err != nil {
				return err
			}
			log.Info(fmt.Sprintf("Loaded %d rows for %s", res.Rows, res.Domain))
			return nil
		},
	}
}

func newPricesCmd() *cobra.Command {
	return newDomainCmd("prices", "Fetches, validates and upserts daily price data",
		extract.DomainPrices, load.ReplaceAll)
}

func newMacroCmd() *cobra.Command {
	return newDomainCmd("macro", "Fetches, validates and upserts macroeconomic indicators",
		extract.DomainMacro, load.ReplaceAll)
}

func newTrendsCmd() *cobra.Command {
	return newDomainCmd("trends", "Fetches, validates and upserts search-trend indices",
		extract.DomainTrends, load.ReplaceAll)
}

func newNewsCmd() *cobra.Command {
	var appendNews bool

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Fetches, scores and loads news sentiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
			if err != nil {
				return fmt.Errorf("error creating pipeline: %w", err)
			}
			defer p.Close()

			policy := load.ReplaceAll
			if appendNews {
				policy = load.Append
			}

			res, err := p.RunDomain(extract.DomainNews, policy)
			if err != nil {
				return err
			}
			log.Info(fmt.Sprintf("Loaded %d rows for %s", res.Rows, res.Domain))
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendNews, "append", false,
		"append news-sentiment rows instead of replacing the table contents")
	return cmd
}
