package locator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dynrelay/locator/internal/metrics"
)

// PublishResult reports what happened on every relay a publish attempt
// reached.
type PublishResult struct {
	Event     *Event
	Outcomes  []PublishOutcome
	Accepted  int
	Attempted int
}

// Publisher builds, encrypts, signs, and broadcasts locator records.
type Publisher struct {
	opts      Options
	pool      RelayPool
	ownedPool bool
	log       *slog.Logger
}

// NewPublisher mirrors NewResolver's pool-ownership rule: supply
// opts.Pool to reuse an existing pool, or leave it nil to have Publisher
// dial (and later close) its own wsrelay.Pool.
func NewPublisher(opts Options, log *slog.Logger) (*Publisher, error) {
	opts = opts.withDefaults(DefaultConfig().PublishTimeout)
	if log == nil {
		log = slog.Default()
	}
	pool := opts.Pool
	owned := false
	if pool == nil {
		defaultPool, err := newDefaultPool(opts)
		if err != nil {
			return nil, err
		}
		pool = defaultPool
		owned = true
	}
	return &Publisher{opts: opts, pool: pool, ownedPool: owned, log: log}, nil
}

// Close releases the pool Publisher created internally, if any.
func (p *Publisher) Close() error {
	if p.ownedPool {
		return p.pool.Close()
	}
	return nil
}

// Publish builds a kind-30058 event for payload under identifier,
// encrypted per mode, and broadcasts it to relays. A non-zero expiresAt
// attaches the relay-side NIP-40 expiration tag; pass time.Time{} to omit
// it and rely solely on the payload's own TTL.
func (p *Publisher) Publish(ctx context.Context, signer Signer, identifier string, payload *Payload, mode ContentMode, relays []string, expiresAt time.Time) (*PublishResult, error) {
	if len(relays) == 0 {
		relays = p.opts.BootstrapRelays
	}
	if len(relays) == 0 {
		return nil, &ArgumentError{Field: "relays", Err: errMissingField}
	}
	raw, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}
	event, err := BuildEvent(ctx, raw, identifier, mode, signer, time.Now(), p.opts.PrivateLocator, expiresAt)
	if err != nil {
		return nil, err
	}
	return p.broadcast(ctx, event, relays)
}

// PublishWrapped builds a wrapped-content event so only the named
// recipients can decrypt it, and broadcasts it to relays.
func (p *Publisher) PublishWrapped(ctx context.Context, signer Signer, identifier string, payload *Payload, recipients []string, relays []string, expiresAt time.Time) (*PublishResult, error) {
	return p.Publish(ctx, signer, identifier, payload, WrappedContentFor(recipients), relays, expiresAt)
}

// PublishRelayList publishes signer's NIP-65-style relay list (kind
// 10002), used by Resolver's gossip discovery path. This supplements
// spec.md's Publish/PublishWrapped operations; it does not replace them.
func (p *Publisher) PublishRelayList(ctx context.Context, signer Signer, relays []string) (*PublishResult, error) {
	if len(relays) == 0 {
		return nil, &ArgumentError{Field: "relays", Err: errMissingField}
	}
	tags := make([][]string, 0, len(relays))
	for _, r := range relays {
		tags = append(tags, []string{"r", r})
	}
	unsigned := &Event{
		PubKey:    signer.PublicKey(),
		CreatedAt: time.Now().Unix(),
		Kind:      KindRelayList,
		Tags:      tags,
		Content:   "",
	}
	event, err := signer.Sign(ctx, unsigned)
	if err != nil {
		return nil, err
	}
	target := relays
	if len(p.opts.BootstrapRelays) > 0 {
		target = p.opts.BootstrapRelays
	}
	return p.broadcast(ctx, event, target)
}

func (p *Publisher) broadcast(ctx context.Context, event *Event, relays []string) (*PublishResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	outcomes, err := p.pool.Publish(ctx, relays, event)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Op: "publish", Err: ctx.Err()}
		}
		return nil, &RelayError{Op: "publish", Reasons: map[string]error{"pool": err}}
	}

	result := &PublishResult{Event: event, Outcomes: outcomes, Attempted: len(outcomes)}
	reasons := make(map[string]error)
	for _, o := range outcomes {
		metrics.PublishOutcomes.WithLabelValues(o.Relay, boolLabel(o.OK)).Inc()
		if o.OK {
			result.Accepted++
			continue
		}
		if o.Err != nil {
			reasons[o.Relay] = o.Err
		} else {
			reasons[o.Relay] = relayRejected(o.Message)
		}
	}
	if result.Accepted == 0 {
		return nil, &RelayError{Op: "publish", Reasons: reasons}
	}
	return result, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type relayRejectedError string

func (e relayRejectedError) Error() string { return "relay rejected event: " + string(e) }

func relayRejected(msg string) error { return relayRejectedError(msg) }
