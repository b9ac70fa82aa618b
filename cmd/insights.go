package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/matching"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights <job-id>",
	Short: "Print the match score distribution and top candidates for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		jobID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id %q: %w", args[0], err)
		}

		log, err := newLogger()
		if err != nil {
			return err
		}

		cfg, err := getConfig()
		if err != nil {
			return fmt.Errorf("parsing configuration: %w", err)
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		insights, err := matching.NewAggregator(st, log).Insights(ctx, jobID)
		if err != nil {
			return err
		}

		return printJSON(insights)
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
