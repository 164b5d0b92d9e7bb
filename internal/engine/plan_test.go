package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/hookflow/pkg/api"
)

func TestExecutePlan_ResumesInOrder(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	wf, host := newSaga(t, Config{Observer: obs})

	var trace []string
	plan := api.Plan{
		api.Step("customers", func(ctx context.Context) (any, error) {
			if err := wf.Trigger(ctx, "customers.createCustomer", "name"); err != nil {
				return nil, err
			}
			trace = append(trace, "customer")
			return "customer", nil
		}),
		api.Step("contracts", func(ctx context.Context) (any, error) {
			err := wf.Trigger(ctx, "contracts.createContract", newContract{ContractNumber: 1, UserName: "name", Runtime: 3})
			if err != nil {
				return nil, err
			}
			trace = append(trace, "contracts")
			return "contracts", nil
		}),
		api.Continue(func(ctx context.Context) (any, error) {
			trace = append(trace, "done")
			return "done", nil
		}),
	}

	result, err := wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, "customer", result)
	require.Empty(t, host.EventsNamed(api.EventWorkflowCompleted))

	result, err = wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, "contracts", result)

	result, err = wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, "done", result)
	require.Equal(t, []string{"customer", "contracts", "done"}, trace)

	events := host.EventsNamed(api.EventWorkflowCompleted)
	require.Len(t, events, 1)
	detail, ok := events[0].Detail.(map[string]any)
	require.True(t, ok, "detail has type %T", events[0].Detail)
	require.Equal(t, []customer{{UserName: "name"}}, detail["customers"])
	require.Len(t, detail["contracts"], 1)
	require.Len(t, obs.snapshots, 1)
}

func TestExecutePlan_WithoutContinuationReturnsNil(t *testing.T) {
	ctx := context.Background()
	wf, host := newSaga(t, Config{})

	plan := api.Plan{
		api.Step("customers", func(ctx context.Context) (any, error) {
			return "customer", wf.Trigger(ctx, "customers.createCustomer", "name")
		}),
		api.Step("madeUp", func(ctx context.Context) (any, error) {
			return "made up!", nil
		}),
	}

	result, err := wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, "customer", result)

	// madeUp is not a projection and never runs.
	result, err = wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Len(t, host.EventsNamed(api.EventWorkflowCompleted), 1)
}

func TestExecutePlan_StepErrorIsReturned(t *testing.T) {
	wf, host := newSaga(t, Config{})
	boom := errors.New("step failed")

	_, err := wf.ExecutePlan(context.Background(), api.Plan{
		api.Step("customers", func(ctx context.Context) (any, error) {
			return nil, boom
		}),
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, host.EventsNamed(api.EventWorkflowCompleted))
}

func TestExecutePlan_ProjectionBackAtInitialRunsAgain(t *testing.T) {
	ctx := context.Background()
	wf, _ := newSaga(t, Config{})

	runs := 0
	plan := api.Plan{
		api.Step("customers", func(ctx context.Context) (any, error) {
			runs++
			return nil, wf.Trigger(ctx, "customers.createCustomer", "name")
		}),
	}

	_, err := wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.NoError(t, wf.Trigger(ctx, "customers.deleteCustomer", "name"))

	// An emptied list equals the initial empty list again.
	_, err = wf.ExecutePlan(ctx, plan)
	require.NoError(t, err)
	require.Equal(t, 2, runs)
}

func TestExecutePlan_RecordsViews(t *testing.T) {
	wf, _ := newSaga(t, Config{})

	_, err := wf.ExecutePlan(context.Background(), api.Plan{
		api.Step("customers", func(ctx context.Context) (any, error) { return nil, nil }),
	})
	require.NoError(t, err)
	require.Equal(t, []api.HistoryEntry{api.Entry(api.HistoryView, "customers")}, wf.History())
}
