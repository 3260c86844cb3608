package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow_backend/internal/adapters"
	analyticsrepo "leadflow_backend/internal/analytics/repository"
	analyticssvc "leadflow_backend/internal/analytics/service"
	leadsrepo "leadflow_backend/internal/leads/repository"
	outreachrepo "leadflow_backend/internal/outreach/repository"
	"leadflow_backend/internal/scheduler"
	tasksrepo "leadflow_backend/internal/tasks/repository"
	taskssvc "leadflow_backend/internal/tasks/service"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const periodicInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	worker, err := scheduler.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	// Task processors. The worker only sees narrow interfaces; the concrete
	// services come from the same composition as the API.
	worker.SetUsageIncrementer(outreachrepo.New(pool))

	analyticsService := analyticssvc.New(analyticsrepo.New(pool), cfg, log)
	worker.SetStatsRecomputer(analyticsService)

	leadsRepository := leadsrepo.New(pool)
	tasksService := taskssvc.New(tasksrepo.New(pool), cfg, log)
	tasksService.SetStaleLeadSource(adapters.NewStaleLeadAdapter(leadsRepository))
	worker.SetFollowupScanner(tasksService)

	// Periodic enqueuer: hourly follow-up scans plus the daily stats rebuild
	// after local midnight.
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize queue client", "error", err)
		panic("failed to initialize queue client: " + err.Error())
	}
	defer client.Close()

	periodic := scheduler.NewPeriodic(client, cfg.GetLocation(), periodicInterval, log)
	go periodic.Run(ctx)

	worker.Run(ctx)
	log.Info("worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
