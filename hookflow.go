package hookflow

import (
	"context"
	"database/sql"

	"github.com/petrijr/hookflow/internal/engine"
	"github.com/petrijr/hookflow/internal/persistence"
	"github.com/petrijr/hookflow/internal/slots"
	"github.com/petrijr/hookflow/pkg/api"
	"github.com/petrijr/hookflow/pkg/cell"
)

// Re-export key types so users don't need to dig into pkg/api and pkg/cell.

type (
	Host                 = api.Host
	UpdateHooker         = api.UpdateHooker
	UpdateAwaiter        = api.UpdateAwaiter
	Workflow             = api.Workflow
	SideEffect           = api.SideEffect
	Plan                 = api.Plan
	PlanStep             = api.PlanStep
	HistoryType          = api.HistoryType
	HistoryEntry         = api.HistoryEntry
	HistoryRecord        = api.HistoryRecord
	SlotTypeError        = api.SlotTypeError
	PayloadTypeError     = api.PayloadTypeError
	Observer             = api.Observer
	ActivityInfo         = api.ActivityInfo
	DeadlineOutcome      = api.DeadlineOutcome
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	// Registry is the slot arena of one host, obtained with Attach.
	Registry = slots.Registry

	Option = cell.Option

	// WorkflowConfig configures UseWorkflow and NewWorkflow.
	WorkflowConfig = engine.Config
	ProjectionSpec = engine.ProjectionSpec

	HistoryStore         = persistence.HistoryStore
	InMemoryHistoryStore = persistence.InMemoryHistoryStore
	SQLiteHistoryStore   = persistence.SQLiteHistoryStore
)

type (
	State[T any]       = cell.State[T]
	Subscriber[T any]  = cell.Subscriber[T]
	Reducer[T any]     = cell.Reducer[T]
	ReducerFunc[T any] = cell.ReducerFunc[T]
	Actions[T any]     = cell.Actions[T]
	Handler[T any]     = cell.Handler[T]
	Listener[T any]    = cell.Listener[T]
)

// Re-export errors and helpers.

var (
	ErrInvalidHost     = api.ErrInvalidHost
	ErrIncorrectFormat = api.ErrIncorrectFormat
	ErrPayloadType     = api.ErrPayloadType
	ErrNoPrecedingSlot = api.ErrNoPrecedingSlot

	IsPayloadTypeError = api.IsPayloadTypeError

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver

	Step      = api.Step
	Continue  = api.Continue
	Entry     = api.Entry
	TriggerOf = api.TriggerOf

	UpdateDefault = cell.UpdateDefault
	EmitEvents    = cell.EmitEvents
	AwaitRender   = cell.AwaitRender
	Merge         = cell.Merge
)

const (
	HistoryTrigger       = api.HistoryTrigger
	HistoryCancel        = api.HistoryCancel
	HistoryOnCancel      = api.HistoryOnCancel
	HistoryAddSideEffect = api.HistoryAddSideEffect
	HistoryAfter         = api.HistoryAfter
	HistoryView          = api.HistoryView

	DeadlineFired     = api.DeadlineFired
	DeadlineGuarded   = api.DeadlineGuarded
	DeadlineAbandoned = api.DeadlineAbandoned

	EventWorkflowCompleted = api.EventWorkflowCompleted
)

// Slot registry
// These wrap internal/slots so external callers never import internal
// packages.

// Attach returns the slot registry of host, creating it on first use.
func Attach(host Host) (*Registry, error) {
	return slots.Attach(host)
}

// MustAttach is like Attach but panics on an invalid host.
func MustAttach(host Host) *Registry {
	return slots.MustAttach(host)
}

// Release forgets the registry of host, typically when the host is destroyed.
func Release(host Host) {
	slots.Release(host)
}

// State and reducer cells

// UseState returns the state cell at the current call position of reg.
func UseState[T any](reg *Registry, initial T, opts ...Option) *State[T] {
	return cell.UseState(reg, initial, opts...)
}

// NewState creates a state cell outside of any registry.
func NewState[T any](host Host, initial T, opts ...Option) *State[T] {
	return cell.NewState(host, initial, opts...)
}

// UseReducer returns the reducer at the current call position of reg.
func UseReducer[T any](reg *Registry, fn ReducerFunc[T], initial T, opts ...Option) *Reducer[T] {
	return cell.UseReducer(reg, fn, initial, opts...)
}

// NewReducer creates a reducer outside of any registry.
func NewReducer[T any](host Host, fn ReducerFunc[T], initial T, opts ...Option) *Reducer[T] {
	return cell.NewReducer(host, fn, initial, opts...)
}

// Handle adapts a handler taking a typed payload.
func Handle[T, P any](fn func(ctx context.Context, payload P) (T, error)) Handler[T] {
	return cell.Handle(fn)
}

// Workflows

// Project declares a named workflow projection.
func Project[T any](name string, reducer ReducerFunc[T], initial T, opts ...Option) ProjectionSpec {
	return engine.Project(name, reducer, initial, opts...)
}

// UseWorkflow returns the workflow at the current call position of reg,
// allocating one reducer per projection.
func UseWorkflow(reg *Registry, cfg WorkflowConfig, specs ...ProjectionSpec) Workflow {
	return engine.Use(reg, cfg, specs...)
}

// NewWorkflow creates a workflow outside of any registry.
func NewWorkflow(host Host, cfg WorkflowConfig, specs ...ProjectionSpec) Workflow {
	return engine.New(host, cfg, specs...)
}

// History stores

// NewInMemoryHistoryStore returns a HistoryStore kept in process memory.
func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return persistence.NewInMemoryHistoryStore()
}

// NewSQLiteHistoryStore returns a HistoryStore writing to db, creating its
// table if needed.
func NewSQLiteHistoryStore(db *sql.DB) (*SQLiteHistoryStore, error) {
	return persistence.NewSQLiteHistoryStore(db)
}

// OpenSQLiteHistoryStore opens the SQLite database at dsn and returns a
// HistoryStore on it. Callers close the returned *sql.DB.
func OpenSQLiteHistoryStore(dsn string) (*sql.DB, *SQLiteHistoryStore, error) {
	return persistence.OpenSQLite(dsn)
}
