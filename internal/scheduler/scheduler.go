package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/sitepulse/sitepulse/internal/clock"
	monitoringdomain "github.com/sitepulse/sitepulse/internal/monitoring/domain"
	obsmetrics "github.com/sitepulse/sitepulse/internal/observability/metrics"
	"github.com/sitepulse/sitepulse/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	jobMonitoringEvaluation = "monitoring_evaluation"
	batchLockKey            = "scheduler:monitoring:batch"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Config struct {
	Interval   time.Duration
	BatchSize  int
	JobTimeout time.Duration
	LockTTL    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 2 * time.Minute
	}
	if c.LockTTL <= 0 {
		c.LockTTL = time.Minute
	}
	return c
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      monitoringdomain.Repository
	Evaluator monitoringdomain.Evaluator
	Locker    *ratelimit.Locker `optional:"true"`
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

// Scheduler periodically evaluates monitoring configs that are due per their
// frequency. The same batch runs behind the internal cron endpoint.
type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       Config
	repo      monitoringdomain.Repository
	evaluator monitoringdomain.Evaluator
	locker    *ratelimit.Locker
	clock     clock.Clock
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Repo == nil || p.Evaluator == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		repo:      p.Repo,
		evaluator: p.Evaluator,
		locker:    p.Locker,
		clock:     p.Clock,
	}, nil
}

// RunBatch evaluates every due monitoring config once. It returns the number
// of configs processed; per-config evaluation failures are logged and do not
// stop the batch. When a Redis locker is configured, at most one instance
// runs a batch at a time and contenders skip silently.
func (s *Scheduler) RunBatch(parent context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, batchLockKey, s.cfg.LockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), batchLockKey, token); err != nil {
				s.log.Warn("release scheduler batch lock", zap.Error(err))
			}
		}()
	}

	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(jobMonitoringEvaluation)
	start := s.clock.Now()

	now := s.clock.Now()
	due, err := s.repo.FindDueForEvaluation(ctx, s.db, now, s.cfg.BatchSize)
	if err != nil {
		schedMetrics.IncJobError(jobMonitoringEvaluation, err)
		return 0, err
	}

	processed := 0
	for _, config := range due {
		if ctx.Err() != nil {
			schedMetrics.IncJobError(jobMonitoringEvaluation, ctx.Err())
			break
		}

		if _, err := s.evaluator.CheckMetricThresholds(ctx, config.WebsiteID, config.UserID); err != nil {
			schedMetrics.IncJobError(jobMonitoringEvaluation, err)
			s.log.Warn("monitoring evaluation failed",
				zap.String("website_id", config.WebsiteID.String()),
				zap.String("user_id", config.UserID.String()),
				zap.Error(err),
			)
			continue
		}

		if err := s.repo.MarkEvaluated(ctx, s.db, config.ID, now); err != nil {
			schedMetrics.IncJobError(jobMonitoringEvaluation, err)
			s.log.Warn("mark config evaluated",
				zap.String("website_id", config.WebsiteID.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	schedMetrics.AddBatchProcessed(jobMonitoringEvaluation, processed)
	schedMetrics.ObserveJobDuration(jobMonitoringEvaluation, s.clock.Now().Sub(start))

	if processed > 0 {
		s.log.Info("monitoring evaluation batch complete",
			zap.Int("due", len(due)),
			zap.Int("processed", processed),
		)
	}
	return processed, nil
}

// Run loops RunBatch on the configured interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunBatch(ctx); err != nil {
				s.log.Error("scheduler batch", zap.Error(err))
			}
		}
	}
}
