// Package wsrelay is the default RelayPool implementation: it dials each
// relay over a real WebSocket connection and speaks the EVENT/OK/REQ/EOSE
// frame grammar directly. Every core locator component (event codec,
// Resolver, Publisher) depends on the RelayPool interface, never on this
// package, so an application can swap in a different transport entirely.
package wsrelay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dynrelay/locator/internal/metrics"
	"github.com/dynrelay/locator/internal/ratelimit"
	"github.com/dynrelay/locator/internal/relaywire"
	"github.com/gorilla/websocket"
)

// Config configures a Pool.
type Config struct {
	DialTimeout time.Duration
	Limiter     *ratelimit.MapLimiter
}

// Pool is a RelayPool backed by one persistent gorilla/websocket
// connection per relay URL, opened lazily and reused across calls.
type Pool struct {
	cfg Config

	mu    sync.Mutex
	conns map[string]*conn
}

// NewPool constructs a Pool. cfg.DialTimeout defaults to 10s; a nil
// Limiter disables rate limiting.
func NewPool(cfg Config) *Pool {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &Pool{cfg: cfg, conns: make(map[string]*conn)}
}

func (p *Pool) connFor(relay string) (*conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.conns[relay]; ok && !c.closed() {
		return c, nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: p.cfg.DialTimeout}
	wsConn, _, err := dialer.Dial(relay, nil)
	if err != nil {
		metrics.RelayQueryErrors.WithLabelValues(relay).Inc()
		return nil, fmt.Errorf("wsrelay: dial %s: %w", relay, err)
	}
	c := newConn(relay, wsConn)
	p.conns[relay] = c
	go c.readLoop()
	return c, nil
}

// Publish sends event to every relay in relays and collects each relay's
// OK response (or the error that kept it from answering).
func (p *Pool) Publish(ctx context.Context, relays []string, event *relaywire.Event) ([]relaywire.PublishOutcome, error) {
	if len(relays) == 0 {
		return nil, errors.New("wsrelay: no relays supplied")
	}
	outcomes := make([]relaywire.PublishOutcome, len(relays))
	var wg sync.WaitGroup
	for i, relay := range relays {
		wg.Add(1)
		go func(i int, relay string) {
			defer wg.Done()
			outcomes[i] = p.publishOne(ctx, relay, event)
		}(i, relay)
	}
	wg.Wait()
	return outcomes, nil
}

func (p *Pool) publishOne(ctx context.Context, relay string, event *relaywire.Event) relaywire.PublishOutcome {
	if p.cfg.Limiter != nil && !p.cfg.Limiter.Allow(relay) {
		metrics.PublishOutcomes.WithLabelValues(relay, "false").Inc()
		return relaywire.PublishOutcome{Relay: relay, Err: errors.New("wsrelay: rate limited")}
	}
	c, err := p.connFor(relay)
	if err != nil {
		metrics.PublishOutcomes.WithLabelValues(relay, "false").Inc()
		return relaywire.PublishOutcome{Relay: relay, Err: err}
	}
	ok, msg, err := c.publish(ctx, event)
	metrics.PublishOutcomes.WithLabelValues(relay, fmt.Sprintf("%t", ok)).Inc()
	return relaywire.PublishOutcome{Relay: relay, OK: ok, Message: msg, Err: err}
}

// Query fans out filter to every relay in relays and merges the events
// each one returns before its EOSE. The returned []QueryOutcome carries
// one entry per relay, recording whichever error (rate limit, dial
// failure, query failure) kept that relay from answering.
func (p *Pool) Query(ctx context.Context, relays []string, filter relaywire.Filter) ([]*relaywire.Event, []relaywire.QueryOutcome, error) {
	if len(relays) == 0 {
		return nil, nil, errors.New("wsrelay: no relays supplied")
	}
	var (
		mu       sync.Mutex
		events   []*relaywire.Event
		outcomes = make([]relaywire.QueryOutcome, len(relays))
		wg       sync.WaitGroup
	)
	for i, relay := range relays {
		wg.Add(1)
		go func(i int, relay string) {
			defer wg.Done()
			if p.cfg.Limiter != nil && !p.cfg.Limiter.Allow(relay) {
				mu.Lock()
				outcomes[i] = relaywire.QueryOutcome{Relay: relay, Err: errors.New("wsrelay: rate limited")}
				mu.Unlock()
				return
			}
			c, err := p.connFor(relay)
			if err != nil {
				mu.Lock()
				outcomes[i] = relaywire.QueryOutcome{Relay: relay, Err: err}
				mu.Unlock()
				return
			}
			got, err := c.query(ctx, filter)
			if err != nil {
				metrics.RelayQueryErrors.WithLabelValues(relay).Inc()
				mu.Lock()
				outcomes[i] = relaywire.QueryOutcome{Relay: relay, Err: err}
				mu.Unlock()
				return
			}
			mu.Lock()
			events = append(events, got...)
			outcomes[i] = relaywire.QueryOutcome{Relay: relay}
			mu.Unlock()
		}(i, relay)
	}
	wg.Wait()
	return events, outcomes, nil
}

// Get returns the newest (highest created_at) event matching filter across
// relays, or nil if none answers before ctx's deadline.
func (p *Pool) Get(ctx context.Context, relays []string, filter relaywire.Filter) (*relaywire.Event, error) {
	filter.Limit = 1
	events, _, err := p.Query(ctx, relays, filter)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	best := events[0]
	for _, e := range events[1:] {
		if e.CreatedAt > best.CreatedAt {
			best = e
		}
	}
	return best, nil
}

// Close tears down every open connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, c := range p.conns {
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.conns = make(map[string]*conn)
	return firstErr
}
