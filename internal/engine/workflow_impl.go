package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/hookflow/internal/clone"
	"github.com/petrijr/hookflow/internal/history"
	"github.com/petrijr/hookflow/internal/persistence"
	"github.com/petrijr/hookflow/internal/slots"
	"github.com/petrijr/hookflow/pkg/api"
	"github.com/petrijr/hookflow/pkg/cell"
)

// workflowImpl coordinates a fixed, ordered set of projections. Its locks
// are never held while handlers, side effects or deadline callbacks run, so
// those may call back into the workflow.
type workflowImpl struct {
	id       string
	host     api.Host
	cfg      Config
	names    []string
	byName   map[string]projection
	log      *history.Log
	checks   sync.WaitGroup
	observer api.Observer

	mu            sync.Mutex
	sideEffects   map[string][]api.SideEffect
	compensations map[string][]any
	cancelOrder   []string
}

// Ensure workflowImpl implements api.Workflow.
var _ api.Workflow = (*workflowImpl)(nil)

// New creates a standalone workflow whose projections are owned by the
// workflow rather than by a slot registry. It panics on empty or duplicate
// projection names.
func New(host api.Host, cfg Config, specs ...ProjectionSpec) api.Workflow {
	checkSpecs(specs)
	projections := make([]projection, len(specs))
	for i, s := range specs {
		projections[i] = s.build(host)
	}
	return newWorkflow(host, cfg, specs, projections)
}

// Use returns the workflow at the current call position of reg. Every
// projection is allocated with cell.UseReducer, in declaration order, then
// the workflow takes the companion slot of the last one. Later renders get
// back the workflow built on the first render; cfg and specs are only read
// then.
func Use(reg *slots.Registry, cfg Config, specs ...ProjectionSpec) api.Workflow {
	checkSpecs(specs)
	projections := make([]projection, len(specs))
	for i, s := range specs {
		projections[i] = s.use(reg)
	}
	if len(specs) == 0 {
		// The workflow slot needs a state slot to hang off.
		cell.UseState(reg, struct{}{})
	}

	c, index := reg.AllocateWorkflow(func() any {
		return newWorkflow(reg.Host(), cfg, specs, projections)
	})
	wf, ok := c.(*workflowImpl)
	if !ok {
		panic(&api.SlotTypeError{Index: index, Want: "*engine.workflowImpl", Got: fmt.Sprintf("%T", c)})
	}
	return wf
}

func newWorkflow(host api.Host, cfg Config, specs []ProjectionSpec, projections []projection) *workflowImpl {
	cfg = cfg.withDefaults()
	w := &workflowImpl{
		id:            uuid.Must(uuid.NewV7()).String(),
		host:          host,
		cfg:           cfg,
		names:         make([]string, len(specs)),
		byName:        make(map[string]projection, len(specs)),
		log:           history.New(),
		observer:      cfg.Observer,
		sideEffects:   make(map[string][]api.SideEffect),
		compensations: make(map[string][]any),
	}
	for i, s := range specs {
		w.names[i] = s.name
		w.byName[s.name] = projections[i]
	}
	return w
}

func (w *workflowImpl) ID() string {
	return w.id
}

// parseActivity splits "projection.action". The projection part must be
// non-empty and the activity must contain exactly one dot.
func parseActivity(activity string) (target, action string, err error) {
	target, action, found := strings.Cut(activity, ".")
	if !found || target == "" || strings.Contains(action, ".") {
		return "", "", fmt.Errorf("%w: %q", api.ErrIncorrectFormat, activity)
	}
	return target, action, nil
}

// record appends entry to the log and mirrors it to the configured store.
func (w *workflowImpl) record(ctx context.Context, entry api.HistoryEntry) {
	seq := w.log.Append(entry)
	if _, discard := w.cfg.Store.(persistence.NoopHistoryStore); discard {
		return
	}
	rec, err := persistence.Record(w.id, seq, entry)
	if err != nil {
		return
	}
	rec.At = w.cfg.Now()
	_ = w.cfg.Store.AppendEntry(ctx, rec)
}

func (w *workflowImpl) Trigger(ctx context.Context, activity string, payload any) error {
	return w.trigger(ctx, activity, payload)
}

func (w *workflowImpl) TriggerAll(ctx context.Context, activities []string, payload any) error {
	for _, activity := range activities {
		if err := w.trigger(ctx, activity, payload); err != nil {
			return err
		}
	}
	return nil
}

func (w *workflowImpl) trigger(ctx context.Context, activity string, payload any) error {
	target, action, err := parseActivity(activity)
	if err != nil {
		return err
	}

	w.record(ctx, api.Entry(api.HistoryTrigger, activity, payload))

	if err := w.runSideEffects(ctx, activity, payload); err != nil {
		return err
	}
	return w.dispatch(ctx, activity, target, action, payload)
}

// runSideEffects starts every side effect of activity at once and waits for
// all of them. The first error in registration order wins.
func (w *workflowImpl) runSideEffects(ctx context.Context, activity string, payload any) error {
	w.mu.Lock()
	effects := append([]api.SideEffect(nil), w.sideEffects[activity]...)
	w.mu.Unlock()

	if len(effects) == 0 {
		return nil
	}

	errs := make([]error, len(effects))
	var wg sync.WaitGroup
	for i, fn := range effects {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(ctx, payload)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch hands action to the target projection, or to every projection in
// declaration order when target is "*". Unknown targets are ignored.
func (w *workflowImpl) dispatch(ctx context.Context, activity, target, action string, payload any) error {
	if target != "*" {
		p, ok := w.byName[target]
		if !ok {
			return nil
		}
		return w.dispatchTo(ctx, activity, target, action, p, payload)
	}
	for _, name := range w.names {
		if err := w.dispatchTo(ctx, activity, name, action, w.byName[name], payload); err != nil {
			return err
		}
	}
	return nil
}

func (w *workflowImpl) dispatchTo(ctx context.Context, activity, name, action string, p projection, payload any) error {
	info := api.ActivityInfo{
		WorkflowID: w.id,
		Activity:   activity,
		Projection: name,
		Action:     action,
	}

	start := time.Now()
	w.observer.OnActivityStart(ctx, info)

	err := p.dispatch(ctx, action, payload)

	w.observer.OnActivityCompleted(ctx, info, err, time.Since(start))
	return err
}

func (w *workflowImpl) AddSideEffect(activity string, fn api.SideEffect) {
	w.record(context.Background(), api.Entry(api.HistoryAddSideEffect, activity, fn))

	if fn == nil {
		return
	}
	w.mu.Lock()
	w.sideEffects[activity] = append(w.sideEffects[activity], fn)
	w.mu.Unlock()
}

func (w *workflowImpl) OnCancel(activity string, payload any) {
	w.record(context.Background(), api.Entry(api.HistoryOnCancel, activity, payload))

	w.mu.Lock()
	if _, ok := w.compensations[activity]; !ok {
		w.cancelOrder = append(w.cancelOrder, activity)
	}
	w.compensations[activity] = append(w.compensations[activity], payload)
	w.mu.Unlock()
}

// Cancel replays the recorded compensations, activity by activity in the
// order they were first registered. Replays bypass side effects and leave
// no trigger entries behind.
func (w *workflowImpl) Cancel(ctx context.Context) error {
	w.record(ctx, api.Entry(api.HistoryCancel))

	w.mu.Lock()
	order := append([]string(nil), w.cancelOrder...)
	payloads := make(map[string][]any, len(order))
	for _, activity := range order {
		payloads[activity] = append([]any(nil), w.compensations[activity]...)
	}
	w.mu.Unlock()

	replayed := 0
	err := func() error {
		for _, activity := range order {
			target, action, err := parseActivity(activity)
			if err != nil {
				return err
			}
			for _, payload := range payloads[activity] {
				if err := w.dispatch(ctx, activity, target, action, payload); err != nil {
					return err
				}
				replayed++
			}
		}
		return nil
	}()

	w.observer.OnCompensate(ctx, w.id, replayed, err)
	return err
}

// View returns the current value of the named projection, or nil when the
// workflow has no projection of that name.
func (w *workflowImpl) View(name string) any {
	w.record(context.Background(), api.Entry(api.HistoryView, name))

	p, ok := w.byName[name]
	if !ok {
		return nil
	}
	return p.value()
}

func (w *workflowImpl) History() []api.HistoryEntry {
	return w.log.Snapshot()
}

// ExecutePlan resumes plan at its first step whose projection has not moved
// from its initial value.
func (w *workflowImpl) ExecutePlan(ctx context.Context, plan api.Plan) (any, error) {
	var final *api.PlanStep
	for i := range plan {
		step := plan[i]
		if step.Name == "" {
			if final == nil {
				final = &plan[i]
			}
			continue
		}
		p, ok := w.byName[step.Name]
		if !ok {
			continue
		}
		if clone.Equal(w.View(step.Name), p.initialValue()) {
			return runStep(ctx, step)
		}
	}

	snapshot := make(map[string]any, len(w.names))
	for _, name := range w.names {
		snapshot[name] = w.byName[name].value()
	}
	w.host.DispatchEvent(api.EventWorkflowCompleted, snapshot)
	w.observer.OnPlanCompleted(ctx, w.id, snapshot)

	if final == nil {
		return nil, nil
	}
	return runStep(ctx, *final)
}

func runStep(ctx context.Context, step api.PlanStep) (any, error) {
	if step.Run == nil {
		return nil, nil
	}
	return step.Run(ctx)
}
