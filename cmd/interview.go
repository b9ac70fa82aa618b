package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/rctandrade/jobfitia-train-interview/internal/interview"
	"github.com/spf13/cobra"
)

var (
	interviewCandidateFlag string
	interviewTypeFlag      string
)

var interviewTypes = []interview.Type{
	interview.TypeTechnical,
	interview.TypeBehavioral,
	interview.TypeLeadership,
	interview.TypeGeneral,
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive simulated interview and print the final analysis",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		candidateID, err := uuid.Parse(interviewCandidateFlag)
		if err != nil {
			return fmt.Errorf("invalid candidate id %q: %w", interviewCandidateFlag, err)
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

		profile, err := st.GetProfile(ctx, candidateID)
		if err != nil {
			return err
		}

		interviewType, err := pickInterviewType(interviewTypeFlag)
		if err != nil {
			return err
		}

		engine := interview.NewEngine(gen, log, maxLogLength(cfg))

		session, err := engine.Start(ctx, interviewType, profile)
		if err != nil {
			return err
		}

		for session.State == interview.StateInProgress {
			fmt.Printf("\nQuestion %d/%d: %s\n", session.Step, interview.MaxQuestions, session.CurrentQuestion)

			answer, err := promptAnswer()
			if err != nil {
				return err
			}

			if err := engine.SubmitAnswer(ctx, session, answer); err != nil {
				return err
			}
		}

		fmt.Println("\nInterview analysis:")
		return printJSON(session.Analysis)
	},
}

func init() {
	interviewCmd.Flags().StringVar(&interviewCandidateFlag, "candidate", "", "candidate profile id")
	interviewCmd.Flags().StringVar(&interviewTypeFlag, "type", "", "interview type (technical, behavioral, leadership, general)")
	interviewCmd.MarkFlagRequired("candidate")
	rootCmd.AddCommand(interviewCmd)
}

// pickInterviewType resolves the interview type from the flag, falling back to
// an interactive selection.
func pickInterviewType(flag string) (interview.Type, error) {
	if flag != "" {
		t := interview.Type(flag)
		if !t.Valid() {
			return "", fmt.Errorf("unsupported interview type: %s", flag)
		}
		return t, nil
	}

	items := make([]string, 0, len(interviewTypes))
	for _, t := range interviewTypes {
		items = append(items, string(t))
	}

	selection := promptui.Select{
		Label: "Interview type",
		Items: items,
	}
	_, chosen, err := selection.Run()
	if err != nil {
		return "", fmt.Errorf("selecting interview type: %w", err)
	}

	return interview.Type(chosen), nil
}

func promptAnswer() (string, error) {
	prompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer must not be blank")
			}
			return nil
		},
	}
	return prompt.Run()
}
