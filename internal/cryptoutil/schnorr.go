package cryptoutil

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

var ErrInvalidSignature = errors.New("cryptoutil: invalid signature")

// Sign produces a 64-byte BIP-340-style Schnorr signature over a 32-byte
// message hash (the event id).
func Sign(priv *secp256k1.PrivateKey, hash [32]byte) ([64]byte, error) {
	// Verify rebuilds the even-Y point from the x-only key, so a key whose
	// public point has odd Y signs with its negation instead.
	if priv.PubKey().SerializeCompressed()[0] == 0x03 {
		var negated secp256k1.ModNScalar
		negated.NegateVal(&priv.Key)
		priv = secp256k1.NewPrivateKey(&negated)
	}
	sig, err := schnorr.Sign(priv, hash[:])
	if err != nil {
		return [64]byte{}, err
	}
	var out [64]byte
	copy(out[:], sig.Serialize())
	return out, nil
}

// Verify checks a 64-byte Schnorr signature against a 32-byte message hash
// and an x-only hex public key.
func Verify(pubKeyHex string, hash [32]byte, sig [64]byte) (bool, error) {
	pub, err := ParseXOnlyPubKey(pubKeyHex)
	if err != nil {
		return false, err
	}
	parsed, err := schnorr.ParseSignature(sig[:])
	if err != nil {
		return false, ErrInvalidSignature
	}
	return parsed.Verify(hash[:], pub), nil
}
