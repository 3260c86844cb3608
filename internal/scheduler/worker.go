package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// UsageIncrementer bumps a template usage counter. Satisfied by the outreach
// repository.
type UsageIncrementer interface {
	IncrementUsage(ctx context.Context, templateID uuid.UUID, organizationID uuid.UUID) error
}

// StatsRecomputer rebuilds daily funnel counters for a stat day. Satisfied by
// the analytics service.
type StatsRecomputer interface {
	RecomputeAll(ctx context.Context, day time.Time) error
}

// FollowupScanner creates follow-up tasks for contacted leads that went
// silent. Satisfied by the tasks service.
type FollowupScanner interface {
	ScanStaleContacted(ctx context.Context) (int, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	location *time.Location
	log      *logger.Logger

	usage   UsageIncrementer
	stats   StatsRecomputer
	scanner FollowupScanner
}

type WorkerConfig interface {
	config.SchedulerConfig
	config.PolicyConfig
}

func NewWorker(cfg WorkerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		location: cfg.GetLocation(),
		log:      log,
	}

	mux.HandleFunc(TaskTemplateUsage, w.handleTemplateUsage)
	mux.HandleFunc(TaskDailyStatsRecompute, w.handleDailyStatsRecompute)
	mux.HandleFunc(TaskFollowupScan, w.handleFollowupScan)

	return w, nil
}

// SetUsageIncrementer wires the template usage counter processor.
func (w *Worker) SetUsageIncrementer(usage UsageIncrementer) {
	w.usage = usage
}

// SetStatsRecomputer wires the daily stats processor.
func (w *Worker) SetStatsRecomputer(stats StatsRecomputer) {
	w.stats = stats
}

// SetFollowupScanner wires the stale-lead scanner.
func (w *Worker) SetFollowupScanner(scanner FollowupScanner) {
	w.scanner = scanner
}

func (w *Worker) handleTemplateUsage(ctx context.Context, task *asynq.Task) error {
	if w.usage == nil {
		return nil
	}

	payload, err := ParseTemplateUsagePayload(task)
	if err != nil {
		return err
	}

	templateID, err := uuid.Parse(payload.TemplateID)
	if err != nil {
		return err
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	return w.usage.IncrementUsage(ctx, templateID, orgID)
}

func (w *Worker) handleDailyStatsRecompute(ctx context.Context, task *asynq.Task) error {
	if w.stats == nil {
		return nil
	}

	payload, err := ParseDailyStatsRecomputePayload(task)
	if err != nil {
		return err
	}

	day, err := time.ParseInLocation("2006-01-02", payload.Date, w.location)
	if err != nil {
		return fmt.Errorf("invalid stat date %q: %w", payload.Date, err)
	}

	return w.stats.RecomputeAll(ctx, day)
}

func (w *Worker) handleFollowupScan(ctx context.Context, task *asynq.Task) error {
	if w.scanner == nil {
		return nil
	}

	created, err := w.scanner.ScanStaleContacted(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		w.log.Info("follow-up scan created tasks", "count", created)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
