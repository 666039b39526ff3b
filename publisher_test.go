package locator

import (
	"context"
	"testing"
	"time"

	"github.com/dynrelay/locator/internal/mockpool"
)

func newTestPublisher(t *testing.T, pool RelayPool, bootstrap []string) *Publisher {
	t.Helper()
	opts := OptionsFromConfig(DefaultConfig())
	opts.Pool = pool
	opts.BootstrapRelays = bootstrap
	opts.Timeout = 5 * time.Second
	p, err := NewPublisher(opts, nil)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	return p
}

func TestPublishPublicThenResolve(t *testing.T) {
	relay := mockpool.NewRelay()
	pool := mockpool.New(map[string]*mockpool.Relay{"relay-a": relay})
	signer := mustSigner(t)
	publisher := newTestPublisher(t, pool, []string{"relay-a"})

	payload := &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{{Type: "tcp", URL: "1.2.3.4:80", Family: "ipv4"}}}
	result, err := publisher.Publish(context.Background(), signer, "addr", payload, PublicContent(), nil, time.Time{})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Accepted != 1 || result.Attempted != 1 {
		t.Fatalf("unexpected publish result: %+v", result)
	}

	resolver := newTestResolver(t, pool, []string{"relay-a"}, false, false)
	got, err := resolver.Resolve(context.Background(), signer.PublicKey(), "addr", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got.Endpoints) != 1 || got.Endpoints[0].URL != "1.2.3.4:80" {
		t.Fatalf("unexpected endpoints: %+v", got.Endpoints)
	}
}

func TestPublishSelfRequiresOwnSignerToResolve(t *testing.T) {
	relay := mockpool.NewRelay()
	pool := mockpool.New(map[string]*mockpool.Relay{"relay-a": relay})
	signer := mustSigner(t)
	publisher := newTestPublisher(t, pool, []string{"relay-a"})

	payload := &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{{Type: "tcp", URL: "self-only", Family: "ipv4"}}}
	if _, err := publisher.Publish(context.Background(), signer, "addr", payload, SelfContent(), nil, time.Time{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	resolver := newTestResolver(t, pool, []string{"relay-a"}, false, false)
	if _, err := resolver.Resolve(context.Background(), signer.PublicKey(), "addr", nil); err == nil {
		t.Fatal("expected resolving a self-encrypted record without the owning signer to fail")
	}
	got, err := resolver.Resolve(context.Background(), signer.PublicKey(), "addr", signer)
	if err != nil {
		t.Fatalf("Resolve with owning signer: %v", err)
	}
	if len(got.Endpoints) != 1 || got.Endpoints[0].URL != "self-only" {
		t.Fatalf("unexpected endpoints: %+v", got.Endpoints)
	}
}

func TestPublishWrappedDeliversToNamedRecipients(t *testing.T) {
	relay := mockpool.NewRelay()
	pool := mockpool.New(map[string]*mockpool.Relay{"relay-a": relay})
	publisherSigner := mustSigner(t)
	alice := mustSigner(t)
	stranger := mustSigner(t)
	publisher := newTestPublisher(t, pool, []string{"relay-a"})

	payload := &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{{Type: "tcp", URL: "wrapped-endpoint", Family: "ipv4"}}}
	if _, err := publisher.PublishWrapped(context.Background(), publisherSigner, "addr", payload, []string{alice.PublicKey()}, nil, time.Time{}); err != nil {
		t.Fatalf("PublishWrapped: %v", err)
	}

	resolver := newTestResolver(t, pool, []string{"relay-a"}, false, false)
	got, err := resolver.Resolve(context.Background(), publisherSigner.PublicKey(), "addr", alice)
	if err != nil {
		t.Fatalf("Resolve as alice: %v", err)
	}
	if len(got.Endpoints) != 1 || got.Endpoints[0].URL != "wrapped-endpoint" {
		t.Fatalf("unexpected endpoints: %+v", got.Endpoints)
	}

	if _, err := resolver.Resolve(context.Background(), publisherSigner.PublicKey(), "addr", stranger); err == nil {
		t.Fatal("expected a non-recipient's resolve to fail")
	}
}

func TestPublishPartialSuccessAcrossRelays(t *testing.T) {
	relay := mockpool.NewRelay()
	pool := mockpool.New(map[string]*mockpool.Relay{"relay-a": relay})
	signer := mustSigner(t)
	publisher := newTestPublisher(t, pool, nil)

	payload := &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{}}
	result, err := publisher.Publish(context.Background(), signer, "addr", payload, PublicContent(), []string{"relay-a", "relay-missing"}, time.Time{})
	if err != nil {
		t.Fatalf("Publish with one unreachable relay: %v", err)
	}
	if result.Accepted != 1 || result.Attempted != 2 {
		t.Fatalf("unexpected partial-success result: %+v", result)
	}
}

func TestPublishFailsWhenNoRelayAccepts(t *testing.T) {
	pool := mockpool.New(map[string]*mockpool.Relay{})
	signer := mustSigner(t)
	publisher := newTestPublisher(t, pool, nil)

	payload := &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{}}
	if _, err := publisher.Publish(context.Background(), signer, "addr", payload, PublicContent(), []string{"relay-missing"}, time.Time{}); err == nil {
		t.Fatal("expected Publish to fail when every relay rejects the event")
	}
}

func TestPublishRequiresAtLeastOneRelay(t *testing.T) {
	pool := mockpool.New(map[string]*mockpool.Relay{})
	signer := mustSigner(t)
	publisher := newTestPublisher(t, pool, nil)
	payload := &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{}}
	if _, err := publisher.Publish(context.Background(), signer, "addr", payload, PublicContent(), nil, time.Time{}); err == nil {
		t.Fatal("expected Publish without any configured relay to fail")
	}
}

func TestNewPublisherDefaultsToPublishTimeout(t *testing.T) {
	pool := mockpool.New(map[string]*mockpool.Relay{})
	publisher, err := NewPublisher(Options{Pool: pool, BootstrapRelays: []string{"relay-a"}}, nil)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if publisher.opts.Timeout != DefaultConfig().PublishTimeout {
		t.Fatalf("Timeout = %v, want the publish-specific default %v", publisher.opts.Timeout, DefaultConfig().PublishTimeout)
	}
}
