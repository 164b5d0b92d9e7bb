package api

import (
	"context"
	"time"
)

// SideEffect runs before a qualified action is dispatched. All side effects
// registered for the same activity run concurrently and are joined before
// the projections change.
type SideEffect func(ctx context.Context, payload any) error

// PlanStep is one named step of a Plan. Name refers to a projection; the step
// runs while that projection still holds its initial value. The reserved
// empty name marks the continuation that runs once every named step is done.
type PlanStep struct {
	Name string
	Run  func(ctx context.Context) (any, error)
}

// Plan is an ordered list of steps for Workflow.ExecutePlan.
type Plan []PlanStep

// Step builds a named PlanStep.
func Step(name string, run func(ctx context.Context) (any, error)) PlanStep {
	return PlanStep{Name: name, Run: run}
}

// Continue builds the continuation step of a Plan.
func Continue(run func(ctx context.Context) (any, error)) PlanStep {
	return PlanStep{Name: "", Run: run}
}

// Workflow coordinates a fixed set of named projections.
//
// Activities are qualified actions: "projection.action" dispatches action to
// one projection, "*.action" to every projection in declaration order.
// Actions a projection does not implement and unknown projection names are
// silently ignored.
type Workflow interface {
	// ID identifies this workflow in observer callbacks and history stores.
	ID() string

	// Trigger records the activity in the history, runs its side effects
	// and dispatches it. A malformed activity fails with ErrIncorrectFormat.
	Trigger(ctx context.Context, activity string, payload any) error

	// TriggerAll triggers each activity in order with the same payload. Each
	// activity is fully processed before the next begins; the first error
	// stops the batch.
	TriggerAll(ctx context.Context, activities []string, payload any) error

	// AddSideEffect registers fn to run before every trigger of activity.
	// Registrations accumulate.
	AddSideEffect(activity string, fn SideEffect)

	// OnCancel records a compensation to replay on Cancel. Payloads recorded
	// for the same activity accumulate and are all replayed.
	OnCancel(activity string, payload any)

	// Cancel replays every recorded compensation. It is not guarded against
	// repeated calls.
	Cancel(ctx context.Context) error

	// After schedules onFire for deadline unless an entry matching unless is
	// present in the history by then. The guard is evaluated against the whole
	// history, including entries recorded before After was called. Cancelling
	// ctx retires the check without firing.
	After(ctx context.Context, deadline time.Time, unless HistoryEntry, onFire func(ctx context.Context) error)

	// Wait blocks until every check scheduled with After has retired.
	Wait(ctx context.Context) error

	// View returns the current value of a projection, or nil if no projection
	// has that name.
	View(name string) any

	// History returns a copy of the workflow log.
	History() []HistoryEntry

	// ExecutePlan runs the first step whose projection still holds its
	// initial value. When every named step is done it fires
	// EventWorkflowCompleted and runs the continuation, or returns nil if the
	// plan has none.
	ExecutePlan(ctx context.Context, plan Plan) (any, error)
}
