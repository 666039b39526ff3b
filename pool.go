package locator

import (
	"context"

	"github.com/dynrelay/locator/internal/relaywire"
)

// Filter, PublishOutcome, and Event (in event.go) are aliases onto
// internal/relaywire so wsrelay and mockpool can implement RelayPool
// without importing this package back.
type Filter = relaywire.Filter

// PublishOutcome is one relay's response to a single publish attempt.
type PublishOutcome = relaywire.PublishOutcome

// QueryOutcome is one relay's outcome for a single Query call: whichever
// events it returned are already folded into Query's []*Event result, so
// this only ever carries the error that kept a relay from answering at
// all. It mirrors PublishOutcome so Resolve can raise RelayError the same
// way Publish does (see DESIGN.md, the pool.go entry).
type QueryOutcome = relaywire.QueryOutcome

// RelayPool is the transport seam: everything above it (event codec,
// Resolver, Publisher) depends only on this interface, never on a
// concrete socket implementation. wsrelay.Pool is the default
// implementation; internal/mockpool provides an in-process one for tests.
//
// The resolver never sets Filter.Tags (see DESIGN.md, Open Question 1):
// it always filters "d" tag matches client-side so Resolve and
// ResolveLatest share one code path.
type RelayPool interface {
	Publish(ctx context.Context, relays []string, event *Event) ([]PublishOutcome, error)
	Query(ctx context.Context, relays []string, filter Filter) ([]*Event, []QueryOutcome, error)
	Get(ctx context.Context, relays []string, filter Filter) (*Event, error)
	Close() error
}
