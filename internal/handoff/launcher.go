package handoff

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

// Navigator opens one link on the shopper's device.
type Navigator interface {
	Open(ctx context.Context, step Step) error
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Launcher executes a plan. Failures are returned for logging only.
type Launcher struct {
	nav   Navigator
	sched Scheduler
	logg  *logger.Logger
}

func NewLauncher(nav Navigator, sched Scheduler, logg *logger.Logger) *Launcher {
	return &Launcher{nav: nav, sched: sched, logg: logg}
}

// Launch opens the primary step. If it fails the fallback is opened at once, otherwise the fallback is scheduled.
func (l *Launcher) Launch(ctx context.Context, plan Plan) error {
	err := l.open(ctx, plan.Primary)
	if plan.Fallback == nil {
		return err
	}
	fallback := *plan.Fallback

	if err != nil {
		fallback.After, fallback.AfterMS = 0, 0
		return multierr.Append(err, l.open(ctx, fallback))
	}

	ctx = context.WithoutCancel(ctx)
	l.sched.After(fallback.After, func() {
		if ferr := l.open(ctx, fallback); ferr != nil && l.logg != nil {
			l.logg.Warn(l.logg.WithField(ctx, "error", ferr.Error()), "handoff.fallback_failed")
		}
	})
	return nil
}

func (l *Launcher) open(ctx context.Context, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open %s: panic: %v", step.Channel, r)
		}
	}()
	if openErr := l.nav.Open(ctx, step); openErr != nil {
		return fmt.Errorf("open %s: %w", step.Channel, openErr)
	}
	return nil
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// Recorder is a Navigator and Scheduler that captures steps instead of performing them,
// so a client can replay them. Scheduled work runs immediately; each step keeps its own delay.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
}

func (r *Recorder) Open(_ context.Context, step Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	return nil
}

func (r *Recorder) After(_ time.Duration, fn func()) {
	fn()
}

func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}
