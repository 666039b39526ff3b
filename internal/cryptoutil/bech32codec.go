package cryptoutil

import (
	"encoding/hex"
	"errors"
)

const (
	HRPPublicKey = "npub"
	HRPSecretKey = "nsec"
)

var ErrWrongPrefix = errors.New("cryptoutil: unexpected bech32 prefix")

// Bech32Codec is the default npub/nsec codec the locator package injects
// into key normalization unless a caller supplies its own KeyCodec.
type Bech32Codec struct{}

func (Bech32Codec) DecodeNpub(s string) (string, error) { return decodeTypedBech32(s, HRPPublicKey) }
func (Bech32Codec) DecodeNsec(s string) (string, error) { return decodeTypedBech32(s, HRPSecretKey) }

func (Bech32Codec) EncodeNpub(hexKey string) (string, error) {
	return encodeTypedBech32(HRPPublicKey, hexKey)
}

func (Bech32Codec) EncodeNsec(hexKey string) (string, error) {
	return encodeTypedBech32(HRPSecretKey, hexKey)
}

func decodeTypedBech32(s, wantHRP string) (string, error) {
	hrp, raw, err := DecodeBech32(s)
	if err != nil {
		return "", err
	}
	if hrp != wantHRP {
		return "", ErrWrongPrefix
	}
	if len(raw) != 32 {
		return "", ErrInvalidBech32
	}
	return hex.EncodeToString(raw), nil
}

func encodeTypedBech32(hrp, hexKey string) (string, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != 32 {
		return "", ErrInvalidKey
	}
	return EncodeBech32(hrp, raw)
}
