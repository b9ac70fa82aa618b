package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rctandrade/jobfitia-train-interview/internal/matching"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume score requests from the queue and process them asynchronously",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log, err := newLogger()
		if err != nil {
			return err
		}

		cfg, err := getConfig()
		if err != nil {
			return fmt.Errorf("parsing configuration: %w", err)
		}

		if cfg.Queue == nil || cfg.Queue.URL == "" {
			return errors.New("queue.url is required (or set AMQP_URL)")
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

		worker := matching.NewWorker(scorer, matching.WorkerConfig{
			URL:     cfg.Queue.URL,
			Queue:   cfg.Queue.Queue,
			Workers: cfg.Queue.Workers,
		}, log)

		return worker.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
