package engine

import (
	"time"

	"github.com/petrijr/hookflow/internal/persistence"
	"github.com/petrijr/hookflow/pkg/api"
)

// DefaultRecheckInterval bounds how long a deadline check sleeps between
// two evaluations when no history entry wakes it earlier.
const DefaultRecheckInterval = 100 * time.Millisecond

// Config describes how to construct a workflow engine. The zero value is
// usable.
type Config struct {
	// Observer receives activity, compensation, deadline and plan
	// callbacks. Defaults to api.NoopObserver.
	Observer api.Observer

	// Store mirrors every history entry. Defaults to a store that discards
	// them. Store errors never fail a workflow operation.
	Store persistence.HistoryStore

	// Now is the clock deadline checks compare against. Defaults to time.Now.
	Now func() time.Time

	// RecheckInterval caps the sleep of a pending deadline check.
	RecheckInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Observer == nil {
		c.Observer = api.NoopObserver{}
	}
	if c.Store == nil {
		c.Store = persistence.NoopHistoryStore{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.RecheckInterval <= 0 {
		c.RecheckInterval = DefaultRecheckInterval
	}
	return c
}
