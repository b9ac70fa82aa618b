package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rctandrade/jobfitia-train-interview/internal/ai"
	"github.com/rctandrade/jobfitia-train-interview/internal/util"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// DefaultScoreQueue is the queue the worker consumes score requests from.
	DefaultScoreQueue = "match_requests"
	// scoreUpdatesExchange receives per-application status updates.
	scoreUpdatesExchange = "match_updates"

	workerInferenceTimeout = 30 * time.Second
	workerScoreAttempts    = 2
)

// WorkerConfig configures the asynchronous scoring worker pool.
type WorkerConfig struct {
	URL     string
	Queue   string
	Workers int
}

// Worker consumes ScoreRequest messages from a queue and runs the scorer,
// publishing a status update per processed application. Scoring failures are
// retried only when the inference error is retryable; schema and validation
// failures are reported as-is.
type Worker struct {
	scorer *Scorer
	config WorkerConfig
	logger *zap.Logger
}

func NewWorker(scorer *Scorer, config WorkerConfig, logger *zap.Logger) *Worker {
	if config.Queue == "" {
		config.Queue = DefaultScoreQueue
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{scorer: scorer, config: config, logger: logger}
}

// Run starts the consumer pool and blocks until every worker stops.
func (w *Worker) Run(ctx context.Context) error {
	conn, err := amqp.Dial(w.config.URL)
	if err != nil {
		return fmt.Errorf("dial queue broker: %w", err)
	}
	defer conn.Close()

	var wg sync.WaitGroup
	wg.Add(w.config.Workers)

	for i := 0; i < w.config.Workers; i++ {
		id := i + 1
		go func() {
			defer wg.Done()
			if err := w.consume(ctx, conn, id); err != nil {
				w.logger.Error("worker stopped", zap.Int("worker_id", id), zap.Error(err))
			}
		}()
	}

	wg.Wait()
	return nil
}

func (w *Worker) consume(ctx context.Context, conn *amqp.Connection, id int) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(w.config.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", w.config.Queue, err)
	}

	msgs, err := ch.Consume(w.config.Queue, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", w.config.Queue, err)
	}

	w.logger.Info("score worker started", zap.Int("worker_id", id), zap.String("queue", w.config.Queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, conn, id, msg.Body)
		}
	}
}

func (w *Worker) handle(ctx context.Context, conn *amqp.Connection, id int, body []byte) {
	var req ScoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		w.logger.Warn("dropping malformed score request",
			zap.Int("worker_id", id),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("processing score request",
		zap.Int("worker_id", id),
		zap.String("application_id", req.ApplicationID.String()),
	)

	score, err := util.Retry(ctx, workerScoreAttempts, ai.IsRetryable, func() (int, error) {
		callCtx, cancel := context.WithTimeout(ctx, workerInferenceTimeout)
		defer cancel()
		return w.scorer.Score(callCtx, req)
	})

	result := ScoreResult{Success: err == nil, ApplicationID: req.ApplicationID, MatchScore: score}
	if err != nil {
		result.Error = err.Error()
		w.logger.Warn("score request failed",
			zap.Int("worker_id", id),
			zap.String("application_id", req.ApplicationID.String()),
			zap.Error(err),
		)
	}

	if err := publishScoreUpdate(conn, result); err != nil {
		w.logger.Warn("failed to publish score update", zap.Error(err))
	}
}

func publishScoreUpdate(conn *amqp.Connection, result ScoreResult) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(scoreUpdatesExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	routingKey := fmt.Sprintf("application.%s", result.ApplicationID)

	return ch.Publish(scoreUpdatesExchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
