package cmd

import (
	"fmt"

	"github.com/rasnes/marketdash-etl/load"
	"github.com/rasnes/marketdash-etl/pipeline"
	"github.com/rasnes/marketdash-etl/utils"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var appendNews bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the full ETL pipeline across all data domains",
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

			results, err := p.Run(policy)
			if err != nil {
				log.Error(fmt.Sprintf("ETL run completed with failures: %v", err))
				return err
			}
			log.Info(fmt.Sprintf("ETL run completed without errors across %d domains", len(results)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendNews, "append", false,
		"append news-sentiment rows instead of replacing the table contents")
	return cmd
}
