package locator

import (
	"context"
	"testing"
	"time"

	"github.com/dynrelay/locator/internal/mockpool"
)

func TestGroupIdentityRoundTrip(t *testing.T) {
	signer, mnemonic, err := NewGroupIdentity()
	if err != nil {
		t.Fatalf("NewGroupIdentity: %v", err)
	}
	restored, err := RestoreGroupIdentity(mnemonic)
	if err != nil {
		t.Fatalf("RestoreGroupIdentity: %v", err)
	}
	if signer.PublicKey() != restored.PublicKey() {
		t.Fatalf("restored identity has a different public key: got %s want %s", restored.PublicKey(), signer.PublicKey())
	}
}

func TestRestoreGroupIdentityRejectsInvalidMnemonic(t *testing.T) {
	if _, err := RestoreGroupIdentity("not a real mnemonic at all"); err == nil {
		t.Fatal("expected an error for an invalid mnemonic")
	}
	if _, err := RestoreGroupIdentity("   "); err == nil {
		t.Fatal("expected an error for an empty mnemonic")
	}
}

func TestGroupResolverFacade(t *testing.T) {
	relay := mockpool.NewRelay()
	pool := mockpool.New(map[string]*mockpool.Relay{"relay-a": relay})
	group, _, err := NewGroupIdentity()
	if err != nil {
		t.Fatalf("NewGroupIdentity: %v", err)
	}
	publishPayload(t, pool, group, "members", &Payload{V: 1, TTL: 600, UpdatedAt: time.Now().Unix(), Endpoints: []Endpoint{{Type: "tcp", URL: "group-endpoint", Family: "ipv4"}}}, SelfContent(), "relay-a")

	resolver := newTestResolver(t, pool, []string{"relay-a"}, false, false)
	groupResolver := NewGroupResolver(resolver, group)

	got, err := groupResolver.Resolve(context.Background(), "members")
	if err != nil {
		t.Fatalf("GroupResolver.Resolve: %v", err)
	}
	if len(got.Endpoints) != 1 || got.Endpoints[0].URL != "group-endpoint" {
		t.Fatalf("unexpected endpoints: %+v", got.Endpoints)
	}

	latest, err := groupResolver.ResolveLatest(context.Background())
	if err != nil {
		t.Fatalf("GroupResolver.ResolveLatest: %v", err)
	}
	if len(latest.Endpoints) != 1 || latest.Endpoints[0].URL != "group-endpoint" {
		t.Fatalf("unexpected endpoints from ResolveLatest: %+v", latest.Endpoints)
	}
}
