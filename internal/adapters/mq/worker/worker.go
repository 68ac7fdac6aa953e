// Package worker awards XP for queued activity submissions.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/pkg/logger"
	"github.com/okian/supportxp/pkg/metrics"
)

// Award outcome labels.
const (
	OutcomeAwarded   = "awarded"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Calculator computes the XP of an activity.
type Calculator interface {
	CalculateXP(ctx context.Context, a model.ActivityData) (model.XPCalculationResult, error)
}

// Ledger persists awards. Record reports false when the submission was
// already awarded.
type Ledger interface {
	Record(ctx context.Context, a model.Award) (bool, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue() <-chan model.ActivitySubmission
}

// Pool runs a fixed number of workers draining a Queue.
type Pool struct {
	size   int
	queue  Queue
	calc   Calculator
	ledger Ledger
	now    func() time.Time
	logger logger.Logger

	processed atomic.Int64
	failed    atomic.Int64

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewPool creates a pool. Call Start to begin processing.
func NewPool(q Queue, calc Calculator, ledger Ledger, opts ...Option) *Pool {
	p := &Pool{
		size:   runtime.NumCPU(),
		queue:  q,
		calc:   calc,
		ledger: ledger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}
	return p
}

// Start launches the workers. They stop when the queue is closed and
// drained, or when ctx is cancelled. Calling Start again is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		metrics.UpdateWorkerCount(p.size)

		var g errgroup.Group
		for i := 0; i < p.size; i++ {
			name := "worker-" + strconv.Itoa(i)
			g.Go(func() error {
				p.run(ctx, p.logger.Named(name))
				return nil
			})
		}
		go func() {
			_ = g.Wait()
			close(p.done)
		}()
		p.logger.Info(ctx, "worker pool started", logger.Int("workers", p.size))
	})
}

// Shutdown closes the queue when it supports closing and waits for the
// workers to drain it. If ctx ends first the workers are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// a pool that never started has nothing to wait for
	p.startOnce.Do(func() {
		p.cancel = func() {}
		close(p.done)
	})

	select {
	case <-p.done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return errors.Wrap(ctx.Err(), "worker pool shutdown")
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Processed returns the number of submissions handled, successful or not.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns the number of submissions that could not be awarded.
func (p *Pool) Failed() int64 { return p.failed.Load() }

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	items := p.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-items:
			if !ok {
				return
			}
			outcome, err := p.process(ctx, s)
			p.processed.Add(1)
			metrics.RecordAward(outcome)
			if err != nil {
				p.failed.Add(1)
				log.Error(ctx, "award failed",
					logger.String("submissionID", s.ID),
					logger.String("userID", s.UserID),
					logger.Error(err),
				)
			}
		}
	}
}

func (p *Pool) process(ctx context.Context, s model.ActivitySubmission) (string, error) {
	res, err := p.calc.CalculateXP(ctx, s.Activity)
	if err != nil {
		return OutcomeFailed, errors.Wrapf(err, "calculate xp for %s", s.ID)
	}

	recorded, err := p.ledger.Record(ctx, model.Award{
		SubmissionID: s.ID,
		UserID:       s.UserID,
		ActivityType: s.Activity.Type,
		Difficulty:   s.Activity.ScenarioDifficulty,
		TotalXP:      res.TotalXP,
		BonusXP:      res.BonusXP,
		AwardedAt:    p.now(),
	})
	if err != nil {
		return OutcomeFailed, errors.Wrapf(err, "record award for %s", s.ID)
	}
	if !recorded {
		return OutcomeDuplicate, nil
	}
	return OutcomeAwarded, nil
}
