package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cityportal/models"
	"cityportal/services/tasks"
	"cityportal/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BroadcastFanOut delivers a queued broadcast to its audience.
type BroadcastFanOut interface {
	FanOut(ctx context.Context, p models.BroadcastPayload) (int, error)
}

// MaintenanceScanner notifies responsible employees about upcoming maintenance.
type MaintenanceScanner interface {
	NotifyMaintenanceDue(ctx context.Context, lookaheadDays int) (int, error)
}

// Options configures the worker and its periodic jobs.
type Options struct {
	Concurrency   int
	ScanCron      string
	LookaheadDays int
}

// Worker runs the asynq task server and the scheduler that feeds it.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewMux routes every task type to its handler.
func NewMux(fanout BroadcastFanOut, scanner MaintenanceScanner, lookaheadDays int) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBroadcast, handleBroadcastTask(fanout))
	mux.HandleFunc(tasks.TypeMaintenanceScan, handleMaintenanceScanTask(scanner, lookaheadDays))
	return mux
}

// InitWorker starts the task server and registers the maintenance scan schedule.
func InitWorker(redisOpt asynq.RedisClientOpt, opts Options, fanout BroadcastFanOut, scanner MaintenanceScanner) (*Worker, error) {
	logger := utils.GetLogger()
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}

	w := &Worker{
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: opts.Concurrency,
			Queues:      map[string]int{"default": 1},
			Logger:      logger.Sugar(),
		}),
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC, Logger: logger.Sugar()}),
		mux:       NewMux(fanout, scanner, opts.LookaheadDays),
	}

	scan, err := tasks.NewMaintenanceScanTask(opts.LookaheadDays)
	if err != nil {
		return nil, err
	}
	entryID, err := w.scheduler.Register(opts.ScanCron, scan)
	if err != nil {
		return nil, fmt.Errorf("failed to register maintenance scan %q: %w", opts.ScanCron, err)
	}
	logger.Info("Maintenance scan scheduled", zap.String("cron", opts.ScanCron), zap.String("entryID", entryID))

	if err := w.scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}
	go w.run()
	return w, nil
}

// run starts the server, retrying with backoff while Redis is unavailable.
func (w *Worker) run() {
	logger := utils.GetLogger()
	const maxAttempts = 5

	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := w.server.Start(w.mux)
		if err == nil {
			logger.Info("Task worker started")
			return
		}
		logger.Warn("Task worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
		if attempts == maxAttempts {
			logger.Error("Task worker gave up; background jobs are disabled")
			return
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
}

// Shutdown stops the scheduler and waits for in-flight tasks.
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func handleBroadcastTask(fanout BroadcastFanOut) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		var p models.BroadcastPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid broadcast payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		n, err := fanout.FanOut(ctx, p)
		if err != nil {
			logger.Error("Broadcast fan-out failed", zap.String("audience", p.Audience), zap.Error(err))
			return err
		}
		logger.Info("Broadcast delivered", zap.String("audience", p.Audience), zap.Int("recipients", n))
		return nil
	}
}

func handleMaintenanceScanTask(scanner MaintenanceScanner, defaultDays int) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		var p models.MaintenanceScanPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid maintenance scan payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if p.LookaheadDays <= 0 {
			p.LookaheadDays = defaultDays
		}

		n, err := scanner.NotifyMaintenanceDue(ctx, p.LookaheadDays)
		if err != nil {
			logger.Error("Maintenance scan failed", zap.Error(err))
			return err
		}
		logger.Info("Maintenance scan finished", zap.Int("notified", n), zap.Int("lookaheadDays", p.LookaheadDays))
		return nil
	}
}
