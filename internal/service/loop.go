package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kursadbilgin/outreach-engine/internal/observability"
	"go.uber.org/zap"
)

const defaultTickInterval = 5 * time.Minute

// Processor is the narrow dependency of the scheduler loop.
type Processor interface {
	ProcessDue(ctx context.Context) error
}

// SchedulerLoop fires the due-attempt processor on a fixed interval. At most
// one pass runs at a time: a tick that lands while a pass is still executing
// is skipped, not queued.
type SchedulerLoop struct {
	processor Processor
	logger    *zap.Logger
	metrics   *observability.Metrics
	interval  time.Duration

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewSchedulerLoop(processor Processor, interval time.Duration, logger *zap.Logger) (*SchedulerLoop, error) {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SchedulerLoop{
		processor: processor,
		logger:    logger,
		interval:  interval,
	}, nil
}

func (l *SchedulerLoop) SetMetrics(metrics *observability.Metrics) {
	if l == nil {
		return
	}
	l.metrics = metrics
}

// Start runs an initial pass, then ticks until the context is cancelled. Any
// pass still in flight is drained before Start returns.
func (l *SchedulerLoop) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l.tick(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.wg.Wait()
			return nil
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// tick launches one processor pass unless a previous pass is still running.
func (l *SchedulerLoop) tick(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		l.metrics.IncSchedulerTick("skipped")
		l.logger.Info("previous pass still running, skipping tick")
		return
	}

	l.metrics.IncSchedulerTick("run")
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.running.Store(false)

		if err := l.processor.ProcessDue(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("due-attempt pass failed", zap.Error(err))
		}
	}()
}
