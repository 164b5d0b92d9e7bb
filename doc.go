// Package hookflow gives render functions persistent state and builds a
// saga-style workflow engine on top of it.
//
// # Slots
//
// A host (any value implementing Host) owns a slot Registry. Each render
// allocates cells by call position:
//
//	reg := hookflow.MustAttach(host)
//
//	func render() {
//		count := hookflow.UseState(reg, 0)
//		todos := hookflow.UseReducer(reg, todosReducer, []string{})
//		...
//	}
//
// The Nth allocation of a render receives the cell created by the Nth
// allocation of the first render. Allocations must therefore happen in the
// same order on every render; skipping one conditionally shifts every
// following slot. When the shift changes the type found at a position, the
// allocation panics with a *SlotTypeError.
//
// Setting a cell asks the host to re-render. Setting the value a cell
// already holds does nothing.
//
// # Workflows
//
// A Workflow owns named projections, each backed by a reducer:
//
//	wf := hookflow.UseWorkflow(reg, hookflow.WorkflowConfig{},
//		hookflow.Project("customers", customersReducer, []Customer{}),
//		hookflow.Project("contracts", contractsReducer, []Contract{}),
//	)
//
//	err := wf.Trigger(ctx, "customers.createCustomer", "Gopher")
//	wf.OnCancel("customers.deleteCustomer", "Gopher")
//
// Triggers are recorded in an append-only history, run the side effects
// registered for the activity and then dispatch it. Cancel replays the
// recorded compensations. After schedules a callback for a deadline unless
// a matching history entry shows up first. ExecutePlan resumes a sequence of
// steps at the first projection still holding its initial value.
//
// # Observability and storage
//
// WorkflowConfig.Observer receives activity, compensation, deadline and plan
// events; NewLoggingObserver logs them with log/slog and BasicMetrics counts
// them. WorkflowConfig.Store mirrors every history entry, for example to
// SQLite with OpenSQLiteHistoryStore. Stores are an audit trail: workflows
// are never rebuilt from them.
//
// # LocalHost
//
// LocalHost is a synchronous Host for tests, examples and server-side use.
// See the examples directory for runnable programs.
package hookflow
