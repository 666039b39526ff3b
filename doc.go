// Package locator resolves and publishes identity-bound endpoint records
// over the Nostr relay network.
//
// An identity is a secp256k1 keypair. A record is a kind-30058
// parameterized replaceable event whose content is a TTL-bounded Payload
// listing the endpoints reachable under that identity for a given record
// identifier. Resolve fetches, verifies, decrypts, and freshness-checks
// such a record; Publish builds, encrypts, signs, and broadcasts one.
//
// The module depends on three small, swappable surfaces rather than on
// concrete implementations: RelayPool for the relay transport (default:
// internal/wsrelay, backed by gorilla/websocket), Verifier/Cipher for the
// cryptographic primitives (default: internal/cryptoutil, backed by
// decred/dcrd's secp256k1), and KeyCodec for bech32 npub/nsec
// normalization. Replace any of them by setting the corresponding
// Options field or package-level Active* variable before use.
package locator
