package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/rctandrade/jobfitia-train-interview/internal/ai"
	"github.com/rctandrade/jobfitia-train-interview/internal/matching"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	scoreTimeout  = 30 * time.Second
	scoreAttempts = 2
)

type applicationReader interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*recruiting.Application, error)
}

type unscoredLister interface {
	ListUnscoredApplications(ctx context.Context, jobID uuid.UUID) ([]*recruiting.Application, error)
}

var scoreJobFlag string

var scoreCmd = &cobra.Command{
	Use:   "score [application-id]",
	Short: "Compute and persist the match score for an application, or for every unscored application of a job",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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

		scorer := matching.NewScorer(gen, st, log, maxLogLength(cfg))

		if scoreJobFlag != "" {
			return scoreJob(ctx, scorer, st, log, scoreJobFlag)
		}

		if len(args) != 1 {
			return fmt.Errorf("an application id or --job is required")
		}
		return scoreOne(ctx, scorer, st, args[0])
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreJobFlag, "job", "", "score every unscored application of this job")
	rootCmd.AddCommand(scoreCmd)
}

func scoreOne(ctx context.Context, scorer *matching.Scorer, st applicationReader, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w", rawID, err)
	}

	app, err := st.GetApplication(ctx, id)
	if err != nil {
		return err
	}

	req := matching.ScoreRequest{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		CandidateID:   app.CandidateID,
	}

	score, err := util.Retry(ctx, scoreAttempts, ai.IsRetryable, func() (int, error) {
		callCtx, cancel := context.WithTimeout(ctx, scoreTimeout)
		defer cancel()
		return scorer.Score(callCtx, req)
	})
	if err != nil {
		return err
	}

	fmt.Printf("application %s scored: %d\n", app.ID, score)
	return nil
}

func scoreJob(ctx context.Context, scorer *matching.Scorer, st unscoredLister, log *zap.Logger, rawID string) error {
	jobID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", rawID, err)
	}

	pending, err := st.ListUnscoredApplications(ctx, jobID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("no unscored applications for this job")
		return nil
	}

	confirm := promptui.Prompt{
		Label:     fmt.Sprintf("Score %d unscored applications", len(pending)),
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		log.Info("scoring cancelled")
		return nil
	}

	results, err := scorer.ScorePending(ctx, jobID)
	if err != nil {
		return err
	}

	return printJSON(results)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
