package locator

import "context"

// Signer is the identity capability BuildEvent and the content encoders
// depend on: produce a public key, sign an unsigned event, and derive a
// conversation key with a peer, all without the caller ever seeing raw
// secret bytes. LocalSigner is the in-memory default; a remote/bunker
// signer implements the same interface over an RPC round-tripper.
type Signer interface {
	PublicKey() string
	Sign(ctx context.Context, unsigned *Event) (*Event, error)
	ConversationKey(ctx context.Context, peerPubKeyHex string) ([32]byte, error)
}
