package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/curriculum"
	"github.com/spf13/cobra"
)

var (
	planJobFlag       string
	planCandidateFlag string
)

var learningPathCmd = &cobra.Command{
	Use:   "learning-path",
	Short: "Generate and persist a personalized learning plan for a candidate targeting a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		jobID, err := uuid.Parse(planJobFlag)
		if err != nil {
			return fmt.Errorf("invalid job id %q: %w", planJobFlag, err)
		}
		candidateID, err := uuid.Parse(planCandidateFlag)
		if err != nil {
			return fmt.Errorf("invalid candidate id %q: %w", planCandidateFlag, err)
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

		gen, err := newGenerator(ctx, cfg, log)
		if err != nil {
			return err
		}

		job, err := st.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		profile, err := st.GetProfile(ctx, candidateID)
		if err != nil {
			return err
		}

		plan, err := curriculum.NewGenerator(gen, st, log, maxLogLength(cfg)).Generate(ctx, profile, job)
		if err != nil {
			return err
		}

		return printJSON(plan)
	},
}

func init() {
	learningPathCmd.Flags().StringVar(&planJobFlag, "job", "", "target job id")
	learningPathCmd.Flags().StringVar(&planCandidateFlag, "candidate", "", "candidate profile id")
	learningPathCmd.MarkFlagRequired("job")
	learningPathCmd.MarkFlagRequired("candidate")
	rootCmd.AddCommand(learningPathCmd)
}
