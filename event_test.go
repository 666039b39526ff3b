package locator

import (
	"context"
	"testing"
	"time"
)

func mustSigner(t *testing.T) *LocalSigner {
	t.Helper()
	signer, err := GenerateLocalSigner()
	if err != nil {
		t.Fatalf("GenerateLocalSigner: %v", err)
	}
	return signer
}

func TestBuildAndVerifyEvent(t *testing.T) {
	signer := mustSigner(t)
	ctx := context.Background()
	event, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), signer, time.Unix(1700000000, 0), false, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if event.Kind != KindLocator {
		t.Fatalf("Kind = %d, want %d", event.Kind, KindLocator)
	}
	if err := VerifyEvent(event); err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if id, ok := identifierTag(event); !ok || id != "addr" {
		t.Fatalf("identifierTag = %q, %v, want addr, true", id, ok)
	}
}

func TestVerifyEventRejectsTamperedContent(t *testing.T) {
	signer := mustSigner(t)
	ctx := context.Background()
	event, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), signer, time.Unix(1700000000, 0), false, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	event.Content = `{"v":2}`
	if err := VerifyEvent(event); err == nil {
		t.Fatal("expected VerifyEvent to reject content mutated after signing")
	}
}

func TestVerifyEventRejectsTamperedSig(t *testing.T) {
	signer := mustSigner(t)
	ctx := context.Background()
	event, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), signer, time.Unix(1700000000, 0), false, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	other := mustSigner(t)
	otherEvent, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), other, time.Unix(1700000000, 0), false, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	event.Sig = otherEvent.Sig
	if err := VerifyEvent(event); err == nil {
		t.Fatal("expected VerifyEvent to reject a signature from a different key")
	}
}

func TestBuildEventEmitsExpirationTag(t *testing.T) {
	signer := mustSigner(t)
	ctx := context.Background()
	expiresAt := time.Unix(1700003600, 0)
	event, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), signer, time.Unix(1700000000, 0), false, expiresAt)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	ts, ok := expirationTag(event)
	if !ok {
		t.Fatal("expected an expiration tag when expiresAt is non-zero")
	}
	if ts != expiresAt.Unix() {
		t.Fatalf("expirationTag = %d, want %d", ts, expiresAt.Unix())
	}
}

func TestBuildEventOmitsExpirationTagWhenZero(t *testing.T) {
	signer := mustSigner(t)
	ctx := context.Background()
	event, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), signer, time.Unix(1700000000, 0), false, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if _, ok := expirationTag(event); ok {
		t.Fatal("expected no expiration tag when expiresAt is the zero value")
	}
}

func TestPrivateTagOnlyWhenRequested(t *testing.T) {
	signer := mustSigner(t)
	ctx := context.Background()
	event, err := BuildEvent(ctx, []byte(`{}`), "addr", PublicContent(), signer, time.Now(), true, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	found := false
	for _, tag := range event.Tags {
		if len(tag) >= 1 && tag[0] == "private" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected private tag when private=true")
	}
}
