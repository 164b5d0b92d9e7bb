// Package cell provides the state and reducer cells that render functions
// allocate through a slot registry.
//
// A State holds one value. Set clones the update, stores it and notifies
// subscribers; the first subscriber asks the host to re-render. Setting the
// value the cell already holds does nothing.
//
// A Reducer wraps a State with a dispatch table built from the current
// value:
//
//	todos := cell.UseReducer(reg, func(list []string) cell.Actions[[]string] {
//	    return cell.Actions[[]string]{
//	        "add": cell.Handle(func(ctx context.Context, item string) ([]string, error) {
//	            return append(list, item), nil
//	        }),
//	    }
//	}, nil)
//
//	_, err := todos.Dispatch(ctx, "add", "write docs")
//
// Unknown actions are ignored. Handler errors are returned unchanged.
package cell
