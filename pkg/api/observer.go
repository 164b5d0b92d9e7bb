package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// ActivityInfo describes one qualified action being processed by a workflow.
type ActivityInfo struct {
	WorkflowID string
	Activity   string
	Projection string
	Action     string
}

// DeadlineOutcome tells how a check scheduled with Workflow.After retired.
type DeadlineOutcome string

const (
	DeadlineFired     DeadlineOutcome = "fired"
	DeadlineGuarded   DeadlineOutcome = "guarded"
	DeadlineAbandoned DeadlineOutcome = "abandoned"
)

// Observer receives callbacks from the workflow engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay workflow execution.
type Observer interface {
	// OnActivityStart is called right before an action is dispatched to a
	// projection, after the activity's side effects completed. A "*" activity
	// reports once per projection, and every Cancel replay reports too. An
	// activity naming an unknown projection reports nothing.
	OnActivityStart(ctx context.Context, info ActivityInfo)

	// OnActivityCompleted is called once the activity was dispatched, for
	// both successes and failures (err != nil).
	OnActivityCompleted(ctx context.Context, info ActivityInfo, err error, duration time.Duration)

	// OnCompensate is called when Cancel finishes. replayed counts the
	// compensation payloads dispatched before it returned.
	OnCompensate(ctx context.Context, workflowID string, replayed int, err error)

	// OnDeadline is called when an After check retires. err is the result
	// of onFire and is only set for DeadlineFired.
	OnDeadline(ctx context.Context, workflowID string, outcome DeadlineOutcome, err error)

	// OnPlanCompleted is called when ExecutePlan finds no step left to run.
	OnPlanCompleted(ctx context.Context, workflowID string, snapshot map[string]any)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnActivityStart(ctx context.Context, info ActivityInfo) {}
func (NoopObserver) OnActivityCompleted(ctx context.Context, info ActivityInfo, err error, d time.Duration) {
}
func (NoopObserver) OnCompensate(ctx context.Context, workflowID string, replayed int, err error) {}
func (NoopObserver) OnDeadline(ctx context.Context, workflowID string, outcome DeadlineOutcome, err error) {
}
func (NoopObserver) OnPlanCompleted(ctx context.Context, workflowID string, snapshot map[string]any) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnActivityStart(ctx context.Context, info ActivityInfo) {
	for _, o := range c.observers {
		o.OnActivityStart(ctx, info)
	}
}

func (c *CompositeObserver) OnActivityCompleted(ctx context.Context, info ActivityInfo, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnActivityCompleted(ctx, info, err, d)
	}
}

func (c *CompositeObserver) OnCompensate(ctx context.Context, workflowID string, replayed int, err error) {
	for _, o := range c.observers {
		o.OnCompensate(ctx, workflowID, replayed, err)
	}
}

func (c *CompositeObserver) OnDeadline(ctx context.Context, workflowID string, outcome DeadlineOutcome, err error) {
	for _, o := range c.observers {
		o.OnDeadline(ctx, workflowID, outcome, err)
	}
}

func (c *CompositeObserver) OnPlanCompleted(ctx context.Context, workflowID string, snapshot map[string]any) {
	for _, o := range c.observers {
		o.OnPlanCompleted(ctx, workflowID, snapshot)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs activity, compensation
// and deadline events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnActivityStart(ctx context.Context, info ActivityInfo) {
	o.Logger.DebugContext(ctx, "activity_start",
		slog.String("workflow_id", info.WorkflowID),
		slog.String("activity", info.Activity),
	)
}

func (o *LoggingObserver) OnActivityCompleted(ctx context.Context, info ActivityInfo, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "activity_completed",
		slog.String("workflow_id", info.WorkflowID),
		slog.String("activity", info.Activity),
		slog.String("projection", info.Projection),
		slog.String("action", info.Action),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnCompensate(ctx context.Context, workflowID string, replayed int, err error) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "workflow_compensated",
		slog.String("workflow_id", workflowID),
		slog.Int("replayed", replayed),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnDeadline(ctx context.Context, workflowID string, outcome DeadlineOutcome, err error) {
	level := slog.LevelDebug
	switch {
	case err != nil:
		level = slog.LevelError
	case outcome == DeadlineFired:
		level = slog.LevelInfo
	}
	o.Logger.Log(ctx, level, "deadline_retired",
		slog.String("workflow_id", workflowID),
		slog.String("outcome", string(outcome)),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnPlanCompleted(ctx context.Context, workflowID string, snapshot map[string]any) {
	o.Logger.InfoContext(ctx, "plan_completed",
		slog.String("workflow_id", workflowID),
		slog.Int("projections", len(snapshot)),
	)
}

// BasicMetrics collects simple counters and aggregate activity durations.
// Activity counters count projection dispatches, so a "*" activity or a
// Cancel replay adds one per projection it reaches.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	activitiesStarted   atomic.Int64
	activitiesCompleted atomic.Int64
	activitiesFailed    atomic.Int64
	compensations       atomic.Int64
	deadlinesFired      atomic.Int64
	deadlinesGuarded    atomic.Int64
	plansCompleted      atomic.Int64
	totalDuration       atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	ActivitiesStarted   int64
	ActivitiesCompleted int64
	ActivitiesFailed    int64

	Compensations    int64
	DeadlinesFired   int64
	DeadlinesGuarded int64
	PlansCompleted   int64

	AvgActivityDuration time.Duration
}

func (m *BasicMetrics) OnActivityStart(ctx context.Context, info ActivityInfo) {
	m.activitiesStarted.Add(1)
}

func (m *BasicMetrics) OnActivityCompleted(ctx context.Context, info ActivityInfo, err error, d time.Duration) {
	if err != nil {
		m.activitiesFailed.Add(1)
		return
	}
	m.activitiesCompleted.Add(1)
	m.totalDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnCompensate(ctx context.Context, workflowID string, replayed int, err error) {
	m.compensations.Add(1)
}

func (m *BasicMetrics) OnDeadline(ctx context.Context, workflowID string, outcome DeadlineOutcome, err error) {
	switch outcome {
	case DeadlineFired:
		m.deadlinesFired.Add(1)
	case DeadlineGuarded:
		m.deadlinesGuarded.Add(1)
	}
}

func (m *BasicMetrics) OnPlanCompleted(ctx context.Context, workflowID string, snapshot map[string]any) {
	m.plansCompleted.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	completed := m.activitiesCompleted.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		ActivitiesStarted:   m.activitiesStarted.Load(),
		ActivitiesCompleted: completed,
		ActivitiesFailed:    m.activitiesFailed.Load(),
		Compensations:       m.compensations.Load(),
		DeadlinesFired:      m.deadlinesFired.Load(),
		DeadlinesGuarded:    m.deadlinesGuarded.Load(),
		PlansCompleted:      m.plansCompleted.Load(),
		AvgActivityDuration: avg,
	}
}
