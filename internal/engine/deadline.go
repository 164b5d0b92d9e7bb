package engine

import (
	"context"
	"time"

	"github.com/petrijr/hookflow/pkg/api"
)

// After schedules onFire for deadline unless the history holds an entry
// matching unless by then. Entries recorded before the call count too.
//
// The check runs on its own goroutine. It sleeps until the deadline, at
// most Config.RecheckInterval at a time, and wakes up early on every new
// history entry. Cancelling ctx retires it without firing.
func (w *workflowImpl) After(ctx context.Context, deadline time.Time, unless api.HistoryEntry, onFire func(ctx context.Context) error) {
	w.record(ctx, api.Entry(api.HistoryAfter, deadline, unless, onFire))

	w.checks.Add(1)
	go func() {
		defer w.checks.Done()
		w.watch(ctx, deadline, unless, onFire)
	}()
}

func (w *workflowImpl) watch(ctx context.Context, deadline time.Time, unless api.HistoryEntry, onFire func(ctx context.Context) error) {
	for {
		// Grab the channel first so an append racing the checks below still
		// wakes us up.
		changed := w.log.Changed()

		if w.log.Contains(unless) {
			w.observer.OnDeadline(ctx, w.id, api.DeadlineGuarded, nil)
			return
		}

		now := w.cfg.Now()
		if now.After(deadline) {
			var err error
			if onFire != nil {
				err = onFire(ctx)
			}
			w.observer.OnDeadline(ctx, w.id, api.DeadlineFired, err)
			return
		}

		wait := deadline.Sub(now)
		if wait > w.cfg.RecheckInterval {
			wait = w.cfg.RecheckInterval
		}
		if wait <= 0 {
			// now == deadline: the deadline passes strictly after it.
			wait = time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.observer.OnDeadline(ctx, w.id, api.DeadlineAbandoned, nil)
			return
		case <-changed:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// Wait blocks until every check scheduled with After has retired, or ctx is
// done.
func (w *workflowImpl) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.checks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
