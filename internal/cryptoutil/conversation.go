package cryptoutil

import (
	"crypto/sha256"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/hkdf"
)

var conversationKeyInfo = []byte("locator/conversation-key/v1")

// ConversationKey derives the 32-byte symmetric key shared between a local
// secret key and a peer's x-only public key: an ECDH shared point reduced
// to its X coordinate, expanded with HKDF-SHA256. Calling it with the
// signer's own public key as peerPub yields the self-conversation key used
// for Self-mode content and, on the ephemeral session identity, for the
// payload ciphertext of wrapped content.
func ConversationKey(priv *secp256k1.PrivateKey, peerPub *secp256k1.PublicKey) ([32]byte, error) {
	var peerJacobian, shared secp256k1.JacobianPoint
	peerPub.AsJacobian(&peerJacobian)
	secp256k1.ScalarMultNonConst(&priv.Key, &peerJacobian, &shared)
	shared.ToAffine()

	sharedX := shared.X.Bytes()
	reader := hkdf.New(sha256.New, sharedX[:], nil, conversationKeyInfo)
	var key [32]byte
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return [32]byte{}, err
	}
	return key, nil
}
