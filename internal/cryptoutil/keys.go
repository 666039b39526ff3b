// Package cryptoutil wraps the secp256k1 primitives the locator event codec
// needs: BIP-340 Schnorr signing/verification, ECDH conversation-key
// derivation, a NIP-44-style authenticated cipher, and a minimal bech32
// codec for npub/nsec normalization. Higher layers depend on the package
// boundary, not on the underlying curve library, so the primitives stay
// swappable per the locator root package's Verifier/Cipher interfaces.
package cryptoutil

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var ErrInvalidKey = errors.New("cryptoutil: invalid key")

// GenerateKeyPair returns a fresh secp256k1 identity.
func GenerateKeyPair() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// SecretFromHex decodes a 64-character hex secret key.
func SecretFromHex(s string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidKey
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

// SecretFromBytes wraps 32 raw secret bytes as a curve scalar.
func SecretFromBytes(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != 32 {
		return nil, ErrInvalidKey
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}

// XOnlyPubKeyHex returns the 32-byte x-only hex encoding nostr events carry,
// dropping the sign-of-y byte a normal compressed key would also encode.
func XOnlyPubKeyHex(pub *secp256k1.PublicKey) string {
	compressed := pub.SerializeCompressed()
	return hex.EncodeToString(compressed[1:])
}

// ParseXOnlyPubKey parses the 32-byte hex x-only public key nostr events
// carry on the wire. Per BIP-340 the even-Y point for a given x-coordinate
// is always the one in play, so the compressed form is rebuilt by
// prepending the even-Y prefix before handing it to the curve library.
func ParseXOnlyPubKey(hexKey string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidKey
	}
	compressed := make([]byte, 0, 33)
	compressed = append(compressed, 0x02)
	compressed = append(compressed, raw...)
	pub, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return pub, nil
}
