package locator

import (
	"context"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/dynrelay/locator/internal/cryptoutil"
)

// LocalSigner holds a secret key in process memory and implements Signer
// directly against internal/cryptoutil. Higher layers never see priv; they
// only ever receive a public key string, a signed Event, or a derived
// 32-byte conversation key.
type LocalSigner struct {
	priv   *secp256k1.PrivateKey
	pubHex string
}

// NewLocalSigner builds a LocalSigner from a hex, bech32 nsec1..., or raw
// 32-byte secret key.
func NewLocalSigner(secretKey any, codec KeyCodec) (*LocalSigner, error) {
	hexKey, err := NormalizeSecretKey(secretKey, codec)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, &ArgumentError{Field: "secretkey", Err: err}
	}
	priv, err := cryptoutil.SecretFromBytes(raw)
	if err != nil {
		return nil, &ArgumentError{Field: "secretkey", Err: err}
	}
	return &LocalSigner{priv: priv, pubHex: cryptoutil.XOnlyPubKeyHex(priv.PubKey())}, nil
}

// GenerateLocalSigner creates a fresh random identity.
func GenerateLocalSigner() (*LocalSigner, error) {
	priv, err := cryptoutil.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return &LocalSigner{priv: priv, pubHex: cryptoutil.XOnlyPubKeyHex(priv.PubKey())}, nil
}

func (s *LocalSigner) PublicKey() string { return s.pubHex }

func (s *LocalSigner) Sign(_ context.Context, unsigned *Event) (*Event, error) {
	signed := *unsigned
	signed.PubKey = s.pubHex
	idBytes, err := computeEventID(&signed)
	if err != nil {
		return nil, err
	}
	sig, err := cryptoutil.Sign(s.priv, idBytes)
	if err != nil {
		return nil, err
	}
	signed.ID = hex.EncodeToString(idBytes[:])
	signed.Sig = hex.EncodeToString(sig[:])
	return &signed, nil
}

func (s *LocalSigner) ConversationKey(_ context.Context, peerPubKeyHex string) ([32]byte, error) {
	peerPub, err := cryptoutil.ParseXOnlyPubKey(peerPubKeyHex)
	if err != nil {
		return [32]byte{}, &ArgumentError{Field: "peerPubKey", Err: err}
	}
	return cryptoutil.ConversationKey(s.priv, peerPub)
}
