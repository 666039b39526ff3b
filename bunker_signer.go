package locator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// BunkerRoundTripper sends one JSON-RPC 2.0 request to a remote NIP-46
// bunker signer and returns its raw "result" field. Implementations
// typically speak the bunker protocol over a relay-relayed encrypted
// channel or a direct local socket; neither transport is part of this
// package's core scope, so callers inject their own.
type BunkerRoundTripper interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// BunkerSigner implements Signer over a remote bunker process instead of
// an in-memory secret key: Sign and ConversationKey become a
// sign_event/nip44_get_key request round-tripped through RoundTripper,
// while PublicKey returns the key given to NewBunkerSigner without a
// round trip. It exists as the extension point signer.go
// documents for a remote/bunker signer; the bunker wire protocol itself
// (connection string parsing, relay-based transport, the approval
// handshake) is out of scope.
type BunkerSigner struct {
	RoundTripper BunkerRoundTripper
	pubHex       string
}

// NewBunkerSigner builds a BunkerSigner that authenticates as
// remotePubKeyHex over rt. Unlike LocalSigner, it performs no key
// derivation locally: remotePubKeyHex is whatever the bunker reported for
// get_public_key out of band.
func NewBunkerSigner(rt BunkerRoundTripper, remotePubKeyHex string) (*BunkerSigner, error) {
	pubHex, err := NormalizePublicKey(remotePubKeyHex, DefaultKeyCodec)
	if err != nil {
		return nil, err
	}
	return &BunkerSigner{RoundTripper: rt, pubHex: pubHex}, nil
}

func (s *BunkerSigner) PublicKey() string { return s.pubHex }

// Sign asks the bunker to sign unsigned and returns its response as a
// fully signed Event. The bunker is trusted to compute the same
// canonical id this package would: Sign does not verify the returned id
// or signature, but it rejects a result whose pubkey differs from this
// signer's, so a misbehaving bunker can't silently swap in another key.
func (s *BunkerSigner) Sign(ctx context.Context, unsigned *Event) (*Event, error) {
	params := struct {
		Event *Event `json:"event"`
	}{Event: unsigned}
	raw, err := s.RoundTripper.Call(ctx, "sign_event", params)
	if err != nil {
		return nil, &RelayError{Op: "bunker_sign", Reasons: map[string]error{"bunker": err}}
	}
	var signed Event
	if err := json.Unmarshal(raw, &signed); err != nil {
		return nil, &DecryptionError{Err: fmt.Errorf("bunker: malformed sign_event result: %w", err)}
	}
	if signed.PubKey != s.pubHex {
		return nil, &ArgumentError{Field: "pubkey", Err: fmt.Errorf("bunker signed as %q, want %q", signed.PubKey, s.pubHex)}
	}
	return &signed, nil
}

// ConversationKey asks the bunker to derive the NIP-44 conversation key
// with peerPubKeyHex, never exposing the bunker's secret key to this
// process.
func (s *BunkerSigner) ConversationKey(ctx context.Context, peerPubKeyHex string) ([32]byte, error) {
	params := struct {
		Peer string `json:"peer_pubkey"`
	}{Peer: peerPubKeyHex}
	raw, err := s.RoundTripper.Call(ctx, "nip44_get_key", params)
	if err != nil {
		return [32]byte{}, &RelayError{Op: "bunker_conversation_key", Reasons: map[string]error{"bunker": err}}
	}
	var hexKey string
	if err := json.Unmarshal(raw, &hexKey); err != nil {
		return [32]byte{}, &DecryptionError{Err: fmt.Errorf("bunker: malformed nip44_get_key result: %w", err)}
	}
	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil || len(keyBytes) != 32 {
		return [32]byte{}, &DecryptionError{Err: fmt.Errorf("bunker: nip44_get_key result is not a 32-byte hex key")}
	}
	var key [32]byte
	copy(key[:], keyBytes)
	return key, nil
}
