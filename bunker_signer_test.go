package locator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"
)

// fakeBunker answers sign_event with signatures produced by a real
// LocalSigner, and nip44_get_key with that signer's own conversation key,
// so BunkerSigner's wiring can be exercised without a real bunker process.
type fakeBunker struct {
	backing *LocalSigner
}

func (b *fakeBunker) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	switch method {
	case "sign_event":
		var req struct {
			Event *Event `json:"event"`
		}
		raw, _ := json.Marshal(params)
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		signed, err := b.backing.Sign(ctx, req.Event)
		if err != nil {
			return nil, err
		}
		return json.Marshal(signed)
	case "nip44_get_key":
		var req struct {
			Peer string `json:"peer_pubkey"`
		}
		raw, _ := json.Marshal(params)
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, err
		}
		key, err := b.backing.ConversationKey(ctx, req.Peer)
		if err != nil {
			return nil, err
		}
		return json.Marshal(hex.EncodeToString(key[:]))
	default:
		return nil, errUnknownMode
	}
}

func TestBunkerSignerSignsThroughRoundTripper(t *testing.T) {
	backing := mustSigner(t)
	signer, err := NewBunkerSigner(&fakeBunker{backing: backing}, backing.PublicKey())
	if err != nil {
		t.Fatalf("NewBunkerSigner: %v", err)
	}
	if signer.PublicKey() != backing.PublicKey() {
		t.Fatalf("PublicKey = %q, want %q", signer.PublicKey(), backing.PublicKey())
	}

	ctx := context.Background()
	event, err := BuildEvent(ctx, []byte(`{"v":1}`), "addr", PublicContent(), signer, time.Now(), false, time.Time{})
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if err := VerifyEvent(event); err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
}

func TestBunkerSignerRejectsMismatchedPubkey(t *testing.T) {
	backing := mustSigner(t)
	other := mustSigner(t)
	signer, err := NewBunkerSigner(&fakeBunker{backing: other}, backing.PublicKey())
	if err != nil {
		t.Fatalf("NewBunkerSigner: %v", err)
	}
	ctx := context.Background()
	unsigned := &Event{PubKey: signer.PublicKey(), Kind: KindLocator, Tags: [][]string{{"d", "addr"}}}
	if _, err := signer.Sign(ctx, unsigned); err == nil {
		t.Fatal("expected Sign to reject a bunker response signed under a different key")
	}
}

func TestBunkerSignerConversationKeyMatchesLocalSigner(t *testing.T) {
	backing := mustSigner(t)
	peer := mustSigner(t)
	signer, err := NewBunkerSigner(&fakeBunker{backing: backing}, backing.PublicKey())
	if err != nil {
		t.Fatalf("NewBunkerSigner: %v", err)
	}
	ctx := context.Background()
	got, err := signer.ConversationKey(ctx, peer.PublicKey())
	if err != nil {
		t.Fatalf("ConversationKey: %v", err)
	}
	want, err := backing.ConversationKey(ctx, peer.PublicKey())
	if err != nil {
		t.Fatalf("backing.ConversationKey: %v", err)
	}
	if got != want {
		t.Fatal("bunker-derived conversation key must match the backing signer's own derivation")
	}
}
