package cell

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/hookflow/internal/testutil"
	"github.com/petrijr/hookflow/pkg/api"
)

func counterReducer(state int) Actions[int] {
	return Actions[int]{
		"increment": func(ctx context.Context, _ any) (int, error) {
			return state + 1, nil
		},
		"add": Handle(func(ctx context.Context, n int) (int, error) {
			return state + n, nil
		}),
		"keep": func(ctx context.Context, _ any) (int, error) {
			return state, nil
		},
		"fail": func(ctx context.Context, _ any) (int, error) {
			return state, errors.New("refused")
		},
	}
}

func TestReducer_DispatchKnownAction(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewFakeHost()
	r := NewReducer(host, counterReducer, 0)

	var notified []string
	r.Subscribe(func(action string, state int) {
		notified = append(notified, action)
	})

	got, err := r.Dispatch(ctx, "increment", nil)
	require.NoError(t, err)
	require.Equal(t, 1, got)

	got, err = r.Dispatch(ctx, "add", 5)
	require.NoError(t, err)
	require.Equal(t, 6, got)
	require.Equal(t, 6, r.Get())

	require.Equal(t, []string{"increment", "add"}, notified)
	require.Equal(t, 2, host.Updates())
	require.Empty(t, host.Events(), "events are opt-in")
}

func TestReducer_UnknownActionIsNoop(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewFakeHost()
	r := NewReducer(host, func(state []string) Actions[[]string] {
		return Actions[[]string]{
			"add": Handle(func(ctx context.Context, s string) ([]string, error) {
				return append(append([]string{}, state...), s), nil
			}),
		}
	}, []string{"a"}, EmitEvents())

	before := r.Get()
	notified := false
	r.Subscribe(func(string, []string) { notified = true })

	got, err := r.Dispatch(ctx, "unknown", "payload")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, got)
	require.False(t, notified)
	require.Equal(t, 0, host.Updates())
	require.Empty(t, host.Events())

	after := r.Get()
	require.Equal(t, len(before), len(after))
	require.Same(t, &before[0], &after[0], "state must be the identical slice")
}

func TestReducer_EmitEventsCarriesNewState(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewFakeHost()
	r := NewReducer(host, counterReducer, 0, EmitEvents())

	_, err := r.Dispatch(ctx, "add", 3)
	require.NoError(t, err)

	events := host.Events()
	require.Len(t, events, 1)
	require.Equal(t, testutil.Event{Name: "add", Detail: 3}, events[0])
}

func TestReducer_HandlerReturningSameStateSkipsRender(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewFakeHost()
	r := NewReducer(host, counterReducer, 7, EmitEvents())

	notified := 0
	r.When("keep", func(state int) { notified++ })

	got, err := r.Dispatch(ctx, "keep", nil)
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Equal(t, 0, host.Updates(), "identical state does not re-render")
	require.Equal(t, 1, notified, "reducer listeners still see the handled action")
	require.Len(t, host.Events(), 1)
}

func TestReducer_HandlerErrorLeavesState(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewFakeHost()
	r := NewReducer(host, counterReducer, 2)

	got, err := r.Dispatch(ctx, "fail", nil)
	require.EqualError(t, err, "refused")
	require.Equal(t, 2, got)
	require.Equal(t, 2, r.Get())
	require.Equal(t, 0, host.Updates())
}

func TestReducer_TypedPayloadMismatch(t *testing.T) {
	ctx := context.Background()
	r := NewReducer(testutil.NewFakeHost(), counterReducer, 0)

	_, err := r.Dispatch(ctx, "add", "three")
	require.ErrorIs(t, err, api.ErrPayloadType)

	p, ok := api.IsPayloadTypeError(err)
	require.True(t, ok)
	require.Equal(t, "add", p.Action)
	require.Equal(t, "int", p.Want)
	require.Equal(t, "string", p.Got)

	got, err := r.Dispatch(ctx, "add", nil)
	require.NoError(t, err)
	require.Equal(t, 0, got, "nil payload is the zero value")
}

func TestReducer_WhenFiltersActions(t *testing.T) {
	ctx := context.Background()
	r := NewReducer(testutil.NewFakeHost(), counterReducer, 0)

	var seen []int
	r.When("add", func(state int) { seen = append(seen, state) })

	_, _ = r.Dispatch(ctx, "increment", nil)
	_, _ = r.Dispatch(ctx, "add", 10)

	require.Equal(t, []int{11}, seen)
}

func TestReducer_ValidatesDispatchTable(t *testing.T) {
	host := testutil.NewFakeHost()

	require.Panics(t, func() {
		NewReducer[int](host, nil, 0)
	})
	require.Panics(t, func() {
		NewReducer(host, func(int) Actions[int] { return nil }, 0)
	})
	require.Panics(t, func() {
		NewReducer(host, func(int) Actions[int] {
			return Actions[int]{"broken": nil}
		}, 0)
	})
}

func TestUseReducer_StableAcrossRenders(t *testing.T) {
	ctx := context.Background()
	host, reg := newRegistry(t)

	var name *State[string]
	var counter *Reducer[int]
	render := func() {
		name = UseState(reg, "initial")
		counter = UseReducer(reg, counterReducer, 0)
	}

	host.Render(render)
	first := counter

	require.NoError(t, name.Set(ctx, "lala"))
	host.Render(render)
	require.Same(t, first, counter)
	require.Equal(t, "lala", name.Get())
	require.Equal(t, 0, counter.Get())

	_, err := counter.Dispatch(ctx, "add", 4)
	require.NoError(t, err)
	host.Render(render)
	require.Equal(t, "lala", name.Get())
	require.Equal(t, 4, counter.Get())
	require.Equal(t, 2, reg.Allocated(), "a reducer uses one state slot")
}
