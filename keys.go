package locator

import (
	"encoding/hex"
	"strings"
)

// NormalizePublicKey accepts a hex string, a bech32 npub1... string, or raw
// 32 bytes, and returns the canonical lowercase-hex form locator events use.
func NormalizePublicKey(input any, codec KeyCodec) (string, error) {
	if codec == nil {
		codec = DefaultKeyCodec
	}
	switch v := input.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "npub1") {
			hexKey, err := codec.DecodeNpub(trimmed)
			if err != nil {
				return "", &ArgumentError{Field: "pubkey", Err: err}
			}
			return hexKey, nil
		}
		return normalizeHexKey("pubkey", trimmed)
	case []byte:
		return normalizeRawKey("pubkey", v)
	default:
		return "", &ArgumentError{Field: "pubkey", Err: errUnsupportedKeyType}
	}
}

// NormalizeSecretKey accepts a hex string, a bech32 nsec1... string, or raw
// 32 bytes, and returns the canonical lowercase-hex form.
func NormalizeSecretKey(input any, codec KeyCodec) (string, error) {
	if codec == nil {
		codec = DefaultKeyCodec
	}
	switch v := input.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "nsec1") {
			hexKey, err := codec.DecodeNsec(trimmed)
			if err != nil {
				return "", &ArgumentError{Field: "secretkey", Err: err}
			}
			return hexKey, nil
		}
		return normalizeHexKey("secretkey", trimmed)
	case []byte:
		return normalizeRawKey("secretkey", v)
	default:
		return "", &ArgumentError{Field: "secretkey", Err: errUnsupportedKeyType}
	}
}

func normalizeHexKey(field, s string) (string, error) {
	if len(s) != 64 {
		return "", &ArgumentError{Field: field, Err: errInvalidHexLength}
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", &ArgumentError{Field: field, Err: err}
	}
	return hex.EncodeToString(raw), nil
}

func normalizeRawKey(field string, b []byte) (string, error) {
	if len(b) != 32 {
		return "", &ArgumentError{Field: field, Err: errInvalidKeyLength}
	}
	return hex.EncodeToString(b), nil
}
