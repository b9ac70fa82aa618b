package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/spf13/cobra"
)

var (
	applyJobFlag         string
	applyCandidateFlag   string
	applyCoverLetterFlag string
	applyResumeURLFlag   string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Submit a candidate application to a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		jobID, err := uuid.Parse(applyJobFlag)
		if err != nil {
			return fmt.Errorf("invalid job id %q: %w", applyJobFlag, err)
		}
		candidateID, err := uuid.Parse(applyCandidateFlag)
		if err != nil {
			return fmt.Errorf("invalid candidate id %q: %w", applyCandidateFlag, err)
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

		manager := recruiting.NewManager(st, log)
		app, err := manager.Apply(ctx, recruiting.ApplyRequest{
			JobID:       jobID,
			CandidateID: candidateID,
			CoverLetter: applyCoverLetterFlag,
			ResumeURL:   applyResumeURLFlag,
		})
		if err != nil {
			return err
		}

		fmt.Printf("application %s created with status %s\n", app.ID, app.Status)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <application-id> <new-status>",
	Short: "Move an application to a new lifecycle status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid application id %q: %w", args[0], err)
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

		manager := recruiting.NewManager(st, log)
		app, err := manager.UpdateStatus(ctx, id, recruiting.ApplicationStatus(args[1]))
		if err != nil {
			return err
		}

		fmt.Printf("application %s is now %s\n", app.ID, app.Status)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyJobFlag, "job", "", "target job id")
	applyCmd.Flags().StringVar(&applyCandidateFlag, "candidate", "", "candidate profile id")
	applyCmd.Flags().StringVar(&applyCoverLetterFlag, "cover-letter", "", "optional cover letter text")
	applyCmd.Flags().StringVar(&applyResumeURLFlag, "resume-url", "", "optional resume URL")
	applyCmd.MarkFlagRequired("job")
	applyCmd.MarkFlagRequired("candidate")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(statusCmd)
}
