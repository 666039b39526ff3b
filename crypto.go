package locator

import "github.com/dynrelay/locator/internal/cryptoutil"

// Verifier checks BIP-340 Schnorr signatures. The default, ActiveVerifier,
// is backed by internal/cryptoutil (decred/dcrd's secp256k1); swap it to
// plug in a hardware-backed or alternate-curve-library verifier.
type Verifier interface {
	VerifySignature(pubKeyHex string, hash [32]byte, sig [64]byte) (bool, error)
}

// Cipher performs the NIP-44-style authenticated encryption the event
// codec uses for Self/Targeted/Wrapped content, keyed by an
// already-derived conversation key. Conversation-key derivation itself
// stays on Signer, never on Cipher, so raw secret material never has to
// pass through this interface.
type Cipher interface {
	Encrypt(key [32]byte, plaintext []byte) (string, error)
	Decrypt(key [32]byte, ciphertext string) ([]byte, error)
}

type defaultVerifier struct{}

func (defaultVerifier) VerifySignature(pubKeyHex string, hash [32]byte, sig [64]byte) (bool, error) {
	return cryptoutil.Verify(pubKeyHex, hash, sig)
}

type defaultCipher struct{}

func (defaultCipher) Encrypt(key [32]byte, plaintext []byte) (string, error) {
	return cryptoutil.Encrypt(key, plaintext)
}

func (defaultCipher) Decrypt(key [32]byte, ciphertext string) ([]byte, error) {
	return cryptoutil.Decrypt(key, ciphertext)
}

// DefaultVerifier and DefaultCipher are the cryptoutil-backed
// implementations locator falls back to.
var (
	DefaultVerifier Verifier = defaultVerifier{}
	DefaultCipher   Cipher   = defaultCipher{}
)

// ActiveVerifier and ActiveCipher are the implementations the event codec
// consults. Replace them (before any concurrent use) to swap primitives,
// mirroring how the standard library lets callers replace
// http.DefaultTransport.
var (
	ActiveVerifier Verifier = DefaultVerifier
	ActiveCipher   Cipher   = DefaultCipher
)

// KeyCodec normalizes externally-encoded keys (bech32 npub/nsec) to the
// lowercase-hex form the rest of the package works with.
type KeyCodec interface {
	DecodeNpub(s string) (hexPubKey string, err error)
	DecodeNsec(s string) (hexSecretKey string, err error)
	EncodeNpub(hexPubKey string) (string, error)
	EncodeNsec(hexSecretKey string) (string, error)
}

// DefaultKeyCodec is the bech32 codec locator uses unless a caller injects
// its own via Options.KeyCodec.
var DefaultKeyCodec KeyCodec = cryptoutil.Bech32Codec{}
