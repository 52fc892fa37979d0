package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func New(ctx context.Context, log *zap.Logger) *Runner { return &Runner{ctx: ctx, log: log} }

// Every runs fn once immediately and then on every tick until the runner
// context is cancelled.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		r.run(name, fn)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	if err := fn(r.ctx); err != nil {
		jobErrors.WithLabelValues(name).Inc()
		r.log.Warn("job failed", zap.String("job", name), zap.Error(err))
		observability.CaptureOpErr(err, "job", map[string]string{"job": name})
	} else {
		jobLastSuccess.WithLabelValues(name).SetToCurrentTime()
	}
	jobRuns.WithLabelValues(name).Inc()
	jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
