package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/petrijr/hookflow/internal/testutil"
	"github.com/petrijr/hookflow/pkg/api"
	"github.com/petrijr/hookflow/pkg/cell"
)

//
// Saga fixture: customers and their contracts.
//

type customer struct {
	UserName string
}

type contract struct {
	ContractNumber int
	UserName       string
	Created        time.Time
	Ends           time.Time
}

type rename struct {
	OldName  string
	UserName string
}

type newContract struct {
	ContractNumber int
	UserName       string
	Runtime        int
}

var (
	errConflict = errors.New("already exists")
	errNotFound = errors.New("not found")
)

func customersReducer(state []customer) cell.Actions[[]customer] {
	find := func(userName string) int {
		return slices.IndexFunc(state, func(c customer) bool { return c.UserName == userName })
	}
	return cell.Actions[[]customer]{
		"createCustomer": cell.Handle(func(ctx context.Context, userName string) ([]customer, error) {
			if find(userName) >= 0 {
				return nil, fmt.Errorf("user %q: %w", userName, errConflict)
			}
			return append(slices.Clone(state), customer{UserName: userName}), nil
		}),
		"changeCustomerName": cell.Handle(func(ctx context.Context, r rename) ([]customer, error) {
			i := find(r.OldName)
			if i < 0 {
				return nil, fmt.Errorf("user %q: %w", r.OldName, errNotFound)
			}
			next := slices.Clone(state)
			next[i].UserName = r.UserName
			return next, nil
		}),
		"deleteCustomer": cell.Handle(func(ctx context.Context, userName string) ([]customer, error) {
			i := find(userName)
			if i < 0 {
				return nil, fmt.Errorf("user %q: %w", userName, errNotFound)
			}
			return slices.Delete(slices.Clone(state), i, i+1), nil
		}),
	}
}

func contractsReducer(state []contract) cell.Actions[[]contract] {
	return cell.Actions[[]contract]{
		"createContract": cell.Handle(func(ctx context.Context, c newContract) ([]contract, error) {
			if slices.ContainsFunc(state, func(x contract) bool { return x.ContractNumber == c.ContractNumber }) {
				return nil, fmt.Errorf("contract %d: %w", c.ContractNumber, errConflict)
			}
			now := time.Now()
			// Contracts start on the first day of the month.
			created := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
			return append(slices.Clone(state), contract{
				ContractNumber: c.ContractNumber,
				UserName:       c.UserName,
				Created:        created,
				Ends:           created.AddDate(0, c.Runtime, 0),
			}), nil
		}),
		"changeCustomerName": cell.Handle(func(ctx context.Context, r rename) ([]contract, error) {
			next := slices.Clone(state)
			for i := range next {
				if next[i].UserName == r.OldName {
					next[i].UserName = r.UserName
				}
			}
			return next, nil
		}),
		"removeContract": cell.Handle(func(ctx context.Context, number int) ([]contract, error) {
			i := slices.IndexFunc(state, func(c contract) bool { return c.ContractNumber == number })
			if i < 0 {
				return nil, fmt.Errorf("contract %d: %w", number, errNotFound)
			}
			return slices.Delete(slices.Clone(state), i, i+1), nil
		}),
	}
}

func sagaSpecs() []ProjectionSpec {
	return []ProjectionSpec{
		Project("customers", customersReducer, []customer{}),
		Project("contracts", contractsReducer, []contract{}),
	}
}

func newSaga(t *testing.T, cfg Config) (api.Workflow, *testutil.FakeHost) {
	t.Helper()
	host := testutil.NewFakeHost()
	return New(host, cfg, sagaSpecs()...), host
}

func customers(t *testing.T, wf api.Workflow) []customer {
	t.Helper()
	v, ok := wf.View("customers").([]customer)
	if !ok {
		t.Fatalf("customers projection has type %T", wf.View("customers"))
	}
	return v
}

func contracts(t *testing.T, wf api.Workflow) []contract {
	t.Helper()
	v, ok := wf.View("contracts").([]contract)
	if !ok {
		t.Fatalf("contracts projection has type %T", wf.View("contracts"))
	}
	return v
}

func historyTypes(entries []api.HistoryEntry, skip ...api.HistoryType) []api.HistoryType {
	var out []api.HistoryType
	for _, e := range entries {
		if slices.Contains(skip, e.Type) {
			continue
		}
		out = append(out, e.Type)
	}
	return out
}

func waitChecks(t *testing.T, wf api.Workflow) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wf.Wait(ctx); err != nil {
		t.Fatalf("deadline checks did not retire: %v", err)
	}
}

// fakeClock is a Config.Now that only moves when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingObserver keeps every callback it receives.
type recordingObserver struct {
	mu            sync.Mutex
	started       []api.ActivityInfo
	failed        []error
	compensations []int
	outcomes      []api.DeadlineOutcome
	snapshots     []map[string]any
}

func (o *recordingObserver) OnActivityStart(ctx context.Context, info api.ActivityInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, info)
}

func (o *recordingObserver) OnActivityCompleted(ctx context.Context, info api.ActivityInfo, err error, d time.Duration) {
	if err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, err)
}

func (o *recordingObserver) OnCompensate(ctx context.Context, workflowID string, replayed int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compensations = append(o.compensations, replayed)
}

func (o *recordingObserver) OnDeadline(ctx context.Context, workflowID string, outcome api.DeadlineOutcome, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) OnPlanCompleted(ctx context.Context, workflowID string, snapshot map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots = append(o.snapshots, snapshot)
}

func (o *recordingObserver) Outcomes() []api.DeadlineOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]api.DeadlineOutcome(nil), o.outcomes...)
}
