package locator

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/dynrelay/locator/internal/metrics"
)

// KindRelayList is the NIP-65-style relay-list event kind Resolver queries
// during gossip discovery.
const KindRelayList = 10002

// Resolver resolves identity-bound records published as kind-30058 events.
type Resolver struct {
	opts      Options
	cache     *resolverCache
	pool      RelayPool
	ownedPool bool
	log       *slog.Logger
}

// NewResolver constructs a Resolver. If opts.Pool is nil, Resolver dials a
// default wsrelay.Pool against opts.BootstrapRelays and owns its
// lifecycle; callers that supply their own Pool remain responsible for
// closing it themselves.
func NewResolver(opts Options, log *slog.Logger) (*Resolver, error) {
	opts = opts.withDefaults(DefaultConfig().Timeout)
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
	return &Resolver{
		opts:      opts,
		cache:     newResolverCache(opts.CacheCapacity),
		pool:      pool,
		ownedPool: owned,
		log:       log,
	}, nil
}

// Close releases the pool Resolver created internally, if any.
func (r *Resolver) Close() error {
	if r.ownedPool {
		return r.pool.Close()
	}
	return nil
}

// Resolve performs the full nine-step lookup for the record identifier
// published by the identity at pubKeyHex, decrypting it for caller (nil if
// the record is expected to be public).
func (r *Resolver) Resolve(ctx context.Context, pubKeyHex, identifier string, caller Signer) (*Payload, error) {
	return r.resolve(ctx, pubKeyHex, identifier, caller, false)
}

// ResolveLatest resolves the most recently updated record the identity at
// pubKeyHex has published under any identifier.
func (r *Resolver) ResolveLatest(ctx context.Context, pubKeyHex string, caller Signer) (*Payload, error) {
	return r.resolve(ctx, pubKeyHex, "", caller, true)
}

func (r *Resolver) resolve(ctx context.Context, pubKeyHex, identifier string, caller Signer, latestAny bool) (*Payload, error) {
	start := time.Now()
	payload, err := r.resolveLocked(ctx, pubKeyHex, identifier, caller, latestAny)
	metrics.ResolveLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ResolveOutcomes.WithLabelValues(resolveOutcomeLabel(err)).Inc()
		return nil, err
	}
	metrics.ResolveOutcomes.WithLabelValues("ok").Inc()
	return payload, nil
}

func resolveOutcomeLabel(err error) string {
	switch err.(type) {
	case *notFoundError:
		return "not_found"
	case *TimeoutError:
		return "timeout"
	case *RelayError:
		return "relay_error"
	case *ArgumentError:
		return "invalid_argument"
	default:
		return "error"
	}
}

func (r *Resolver) resolveLocked(ctx context.Context, pubKeyHex, identifier string, caller Signer, latestAny bool) (*Payload, error) {
	// 1. validate and normalize the target identity.
	pubKeyHex, err := NormalizePublicKey(pubKeyHex, r.opts.KeyCodec)
	if err != nil {
		return nil, err
	}

	cacheID := identifier
	if latestAny {
		cacheID = latestIdentifier
	}
	now := time.Now()

	// 2. fast path: an unexpired cached entry needs no network round trip.
	if cached, ok := r.cache.get(pubKeyHex, cacheID, now); ok {
		return cached, nil
	}

	// 3. bootstrap + optional gossip relay-set construction.
	relays := r.relaySet(ctx, pubKeyHex)
	if len(relays) == 0 {
		return nil, &ArgumentError{Field: "relays", Err: errMissingField}
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	// 4. deadline-bound query across the relay set.
	filter := Filter{
		Authors: []string{pubKeyHex},
		Kinds:   []int{KindLocator},
		Limit:   r.opts.QueryLimit,
	}
	events, outcomes, err := r.pool.Query(ctx, relays, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Op: "resolve", Err: ctx.Err()}
		}
		return nil, &RelayError{Op: "resolve", Reasons: map[string]error{"pool": err}}
	}
	if len(events) == 0 {
		if reasons := failureReasons(outcomes); len(reasons) > 0 && len(reasons) == len(outcomes) {
			return nil, &RelayError{Op: "resolve", Reasons: reasons}
		}
	}

	// 5. author and signature checks, dropping events by another author and
	// forged or malformed events.
	verified := make([]*Event, 0, len(events))
	for _, e := range events {
		if e.PubKey != pubKeyHex {
			continue
		}
		if err := VerifyEvent(e); err != nil {
			r.log.Debug("locator: dropping event that failed verification", "pubkey", e.PubKey, "err", err)
			continue
		}
		verified = append(verified, e)
	}

	// 6. identifier match, unless resolving the latest record under any
	// identifier.
	candidates := verified
	if !latestAny {
		candidates = make([]*Event, 0, len(verified))
		for _, e := range verified {
			if tag, ok := identifierTag(e); ok && tag == identifier {
				candidates = append(candidates, e)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	// 7. deterministic tie-break: newest created_at first, lexically
	// smallest id first among ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt != candidates[j].CreatedAt {
			return candidates[i].CreatedAt > candidates[j].CreatedAt
		}
		return candidates[i].ID < candidates[j].ID
	})

	// 8-9. only the single newest candidate proceeds: an older, already
	// superseded event must never stand in for it, even if the newest one
	// turns out not to be for caller or is expired under strict mode.
	head := candidates[0]
	payload, expiry, err := r.decodeAndCheckFreshness(ctx, head, caller, now)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrNotFound
	}
	if now.After(expiry) && r.opts.Strict {
		return nil, ErrNotFound
	}
	if !now.After(expiry) {
		r.cache.put(pubKeyHex, cacheID, payload, expiry)
	}
	return r.transform(payload), nil
}

// failureReasons collects one error per relay outcome that failed, keyed
// by relay name. It is used to tell "every selected relay failed" apart
// from "relays answered with zero matching events".
func failureReasons(outcomes []QueryOutcome) map[string]error {
	reasons := make(map[string]error, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			reasons[o.Relay] = o.Err
		}
	}
	return reasons
}

// decodeAndCheckFreshness runs steps 8 (decrypt dispatch) and 9 (freshness
// computation) for a single candidate event.
func (r *Resolver) decodeAndCheckFreshness(ctx context.Context, e *Event, caller Signer, now time.Time) (*Payload, time.Time, error) {
	raw, ok, err := DecryptEvent(ctx, e, caller)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !ok {
		return nil, time.Time{}, nil
	}
	payload, err := DecodePayload(raw)
	if err != nil {
		return nil, time.Time{}, err
	}

	expiry := time.Unix(payload.UpdatedAt+payload.TTL, 0)
	if expTag, ok := expirationTag(e); ok {
		fromTag := time.Unix(expTag, 0)
		if fromTag.Before(expiry) {
			expiry = fromTag
		}
	}
	_ = now
	return payload, expiry, nil
}

func (r *Resolver) transform(p *Payload) *Payload {
	if r.opts.URLTransformer == nil {
		return p
	}
	out := *p
	out.Endpoints = make([]Endpoint, len(p.Endpoints))
	for i, ep := range p.Endpoints {
		out.Endpoints[i] = r.opts.URLTransformer(ep)
	}
	return &out
}

func (r *Resolver) relaySet(ctx context.Context, pubKeyHex string) []string {
	relays := append([]string(nil), r.opts.BootstrapRelays...)
	if !r.opts.Gossip || len(r.opts.BootstrapRelays) == 0 {
		return relays
	}
	listCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	filter := Filter{Authors: []string{pubKeyHex}, Kinds: []int{KindRelayList}, Limit: 1}
	listEvent, err := r.pool.Get(listCtx, r.opts.BootstrapRelays, filter)
	if err != nil || listEvent == nil {
		return relays
	}
	if err := VerifyEvent(listEvent); err != nil || listEvent.PubKey != pubKeyHex {
		return relays
	}
	seen := make(map[string]struct{}, len(relays))
	for _, relay := range relays {
		seen[relay] = struct{}{}
	}
	for _, tag := range listEvent.Tags {
		if len(tag) >= 2 && tag[0] == "r" {
			if _, dup := seen[tag[1]]; !dup {
				relays = append(relays, tag[1])
				seen[tag[1]] = struct{}{}
			}
		}
	}
	return relays
}
