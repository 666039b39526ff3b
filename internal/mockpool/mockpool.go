// Package mockpool is an in-process RelayPool for tests: no sockets, no
// goroutine races to synchronize against, deterministic storage and filter
// matching. Its replace-on-publish and filter-matching rules mirror the
// reference mock relay's in-memory event store exactly, so tests written
// against it exercise the same semantics a real relay would apply.
package mockpool

import (
	"context"
	"sync"

	"github.com/dynrelay/locator/internal/relaywire"
)

// Relay is one named in-memory relay's event store. A Pool can front
// several, letting tests exercise gossip discovery across relays that
// hold disjoint event sets.
type Relay struct {
	mu     sync.Mutex
	events []*relaywire.Event
}

// NewRelay returns an empty relay store.
func NewRelay() *Relay { return &Relay{} }

func isReplaceableKind(kind int) bool {
	return (kind >= 30000 && kind < 40000) || kind == 10002
}

func dTag(e *relaywire.Event) string {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "d" {
			return tag[1]
		}
	}
	return ""
}

// store appends event, first removing any existing replaceable event with
// the same (pubkey, kind, d-tag), matching the reference relay's publish
// handler.
func (r *Relay) store(event *relaywire.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if isReplaceableKind(event.Kind) {
		d := dTag(event)
		kept := r.events[:0:0]
		for _, e := range r.events {
			if e.PubKey == event.PubKey && e.Kind == event.Kind && dTag(e) == d {
				continue
			}
			kept = append(kept, e)
		}
		r.events = kept
	}
	r.events = append(r.events, event)
}

func matches(e *relaywire.Event, f relaywire.Filter) bool {
	if len(f.Authors) > 0 {
		found := false
		for _, a := range f.Authors {
			if a == e.PubKey {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if k == e.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if dTags, ok := f.Tags["d"]; ok {
		d := dTag(e)
		found := false
		for _, want := range dTags {
			if want == d {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Since != nil && e.CreatedAt < f.Since.Unix() {
		return false
	}
	if f.Until != nil && e.CreatedAt > f.Until.Unix() {
		return false
	}
	return true
}

func (r *Relay) query(f relaywire.Filter) []*relaywire.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*relaywire.Event
	for _, e := range r.events {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// Pool is a RelayPool over a fixed set of named in-memory relays.
type Pool struct {
	relays map[string]*Relay
}

// New builds a Pool from a name -> Relay map; relay URLs passed to
// Publish/Query/Get that aren't in this map get an errUnknownRelay outcome,
// mirroring how a real pool reports an unreachable relay.
func New(relays map[string]*Relay) *Pool {
	return &Pool{relays: relays}
}

func (p *Pool) Publish(_ context.Context, relays []string, event *relaywire.Event) ([]relaywire.PublishOutcome, error) {
	outcomes := make([]relaywire.PublishOutcome, 0, len(relays))
	for _, name := range relays {
		relay, ok := p.relays[name]
		if !ok {
			outcomes = append(outcomes, relaywire.PublishOutcome{Relay: name, Err: errUnknownRelay(name)})
			continue
		}
		relay.store(event)
		outcomes = append(outcomes, relaywire.PublishOutcome{Relay: name, OK: true})
	}
	return outcomes, nil
}

func (p *Pool) Query(_ context.Context, relays []string, filter relaywire.Filter) ([]*relaywire.Event, []relaywire.QueryOutcome, error) {
	var out []*relaywire.Event
	outcomes := make([]relaywire.QueryOutcome, 0, len(relays))
	for _, name := range relays {
		relay, ok := p.relays[name]
		if !ok {
			outcomes = append(outcomes, relaywire.QueryOutcome{Relay: name, Err: errUnknownRelay(name)})
			continue
		}
		out = append(out, relay.query(filter)...)
		outcomes = append(outcomes, relaywire.QueryOutcome{Relay: name})
	}
	return out, outcomes, nil
}

func (p *Pool) Get(ctx context.Context, relays []string, filter relaywire.Filter) (*relaywire.Event, error) {
	filter.Limit = 1
	events, _, err := p.Query(ctx, relays, filter)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	best := events[0]
	for _, e := range events[1:] {
		if e.CreatedAt > best.CreatedAt {
			best = e
		}
	}
	return best, nil
}

func (p *Pool) Close() error { return nil }

type errUnknownRelay string

func (e errUnknownRelay) Error() string { return "mockpool: unknown relay " + string(e) }
