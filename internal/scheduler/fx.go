package scheduler

import (
	"context"
	"time"

	"github.com/sitepulse/sitepulse/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ConfigFrom),
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Interval:   time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second,
		BatchSize:  cfg.Scheduler.BatchSize,
		JobTimeout: time.Duration(cfg.Scheduler.JobTimeoutSecs) * time.Second,
		LockTTL:    time.Duration(cfg.Scheduler.LockTTLSeconds) * time.Second,
	}.withDefaults()
}

func registerLifecycle(lc fx.Lifecycle, cfg config.Config, s *Scheduler) {
	if !cfg.Scheduler.Enabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
