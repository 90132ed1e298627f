package cmd

import (
	"fmt"

	"github.com/rasnes/marketdash-etl/pipeline"
	"github.com/rasnes/marketdash-etl/utils"
	"github.com/spf13/cobra"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Creates the warehouse schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newMaintenancePipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			return p.InitSchema()
		},
	}
}

func newPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Deletes rows older than each table's retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newMaintenancePipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			return p.Prune()
		},
	}
}

func newMaintenancePipeline() (*pipeline.Pipeline, error) {
	cfg, log, err := initializeConfigAndLogger()
	if err != nil {
		return nil, err
	}

	// Maintenance commands never hit the upstream APIs, so fixture sources
	// avoid requiring API tokens in the environment.
	cfg.Extract.UseFixtures = true

	p, err := pipeline.NewPipeline(cfg, log, utils.RealTimeProvider{})
	if err != nil {
		return nil, fmt.Errorf("error creating pipeline: %w", err)
	}
	return p, nil
}
