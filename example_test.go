package hookflow_test

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/petrijr/hookflow"
)

func itemsReducer(state []string) hookflow.Actions[[]string] {
	return hookflow.Actions[[]string]{
		"add": hookflow.Handle(func(ctx context.Context, item string) ([]string, error) {
			return append(slices.Clone(state), item), nil
		}),
		"remove": hookflow.Handle(func(ctx context.Context, item string) ([]string, error) {
			return slices.DeleteFunc(slices.Clone(state), func(s string) bool { return s == item }), nil
		}),
	}
}

// Example_useWorkflow renders a component that owns a workflow, runs two
// activities and undoes them.
func Example_useWorkflow() {
	ctx := context.Background()

	host := hookflow.NewLocalHost()
	defer host.Unmount()
	reg := hookflow.MustAttach(host)

	var wf hookflow.Workflow
	err := host.Mount(func() {
		wf = hookflow.UseWorkflow(reg, hookflow.WorkflowConfig{},
			hookflow.Project("cart", itemsReducer, []string{}),
			hookflow.Project("wishlist", itemsReducer, []string{}),
		)
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := wf.Trigger(ctx, "cart.add", "milk"); err != nil {
		log.Fatal(err)
	}
	wf.OnCancel("cart.remove", "milk")

	if err := wf.Trigger(ctx, "*.add", "bread"); err != nil {
		log.Fatal(err)
	}
	wf.OnCancel("*.remove", "bread")

	fmt.Println("cart:", wf.View("cart"), "wishlist:", wf.View("wishlist"))

	if err := wf.Cancel(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println("cart:", wf.View("cart"), "wishlist:", wf.View("wishlist"))
	fmt.Println("renders:", host.Renders())

	// Output:
	// cart: [milk bread] wishlist: [bread]
	// cart: [] wishlist: []
	// renders: 7
}

// Example_after compensates a workflow whose confirmation never arrives.
func Example_after() {
	ctx := context.Background()

	wf := hookflow.NewWorkflow(hookflow.NewLocalHost(), hookflow.WorkflowConfig{},
		hookflow.Project("cart", itemsReducer, []string{}),
	)

	_ = wf.Trigger(ctx, "cart.add", "milk")
	wf.OnCancel("cart.remove", "milk")

	wf.After(ctx, time.Now().Add(50*time.Millisecond), hookflow.TriggerOf("cart.confirm"), func(ctx context.Context) error {
		fmt.Println("no confirmation, compensating")
		return wf.Cancel(ctx)
	})
	if err := wf.Wait(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println("cart:", wf.View("cart"))

	// Output:
	// no confirmation, compensating
	// cart: []
}

// Example_executePlan resumes a plan at the first step whose projection is
// still empty.
func Example_executePlan() {
	ctx := context.Background()

	wf := hookflow.NewWorkflow(hookflow.NewLocalHost(), hookflow.WorkflowConfig{},
		hookflow.Project("cart", itemsReducer, []string{}),
		hookflow.Project("wishlist", itemsReducer, []string{}),
	)

	plan := hookflow.Plan{
		hookflow.Step("cart", func(ctx context.Context) (any, error) {
			return "filled cart", wf.Trigger(ctx, "cart.add", "milk")
		}),
		hookflow.Step("wishlist", func(ctx context.Context) (any, error) {
			return "filled wishlist", wf.Trigger(ctx, "wishlist.add", "cake")
		}),
		hookflow.Continue(func(ctx context.Context) (any, error) {
			return "checked out", nil
		}),
	}

	for range 3 {
		result, err := wf.ExecutePlan(ctx, plan)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(result)
	}

	// Output:
	// filled cart
	// filled wishlist
	// checked out
}
