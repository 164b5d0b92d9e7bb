package cell

// Option configures a state or reducer cell.
type Option func(*options)

type options struct {
	updateDefault bool
	emitEvents    bool
	awaitRender   bool
	merge         bool
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// UpdateDefault makes every re-render overwrite an existing cell with the
// initial value passed at that call position. The overwrite is silent: no
// subscriber runs and no update is requested.
func UpdateDefault() Option {
	return func(o *options) { o.updateDefault = true }
}

// EmitEvents makes a reducer fire a host event named after every handled
// action, carrying the new state as detail.
func EmitEvents() Option {
	return func(o *options) { o.emitEvents = true }
}

// AwaitRender makes Set wait for the host to commit the render it requested,
// for hosts implementing api.UpdateAwaiter.
func AwaitRender() Option {
	return func(o *options) { o.awaitRender = true }
}

// Merge makes Set merge map updates into the current value instead of
// replacing it.
func Merge() Option {
	return func(o *options) { o.merge = true }
}
