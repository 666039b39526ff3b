package cryptoutil

import (
	"errors"
	"strings"
)

// Bech32 (BIP-173) has no home in the example pack's dependency set; the
// rest of the module reaches for an ecosystem library wherever one exists,
// but npub/nsec encoding is explicitly called out as small and swappable,
// so a minimal self-contained codec lives here instead of pulling in a
// dependency whose only consumer is this one file.

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var ErrInvalidBech32 = errors.New("cryptoutil: invalid bech32 string")

func bech32Polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func bech32HRPExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func bech32CreateChecksum(hrp string, data []byte) []byte {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := bech32Polymod(values) ^ 1
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> (5 * uint(5-i))) & 31)
	}
	return checksum
}

func bech32VerifyChecksum(hrp string, data []byte) bool {
	values := append(bech32HRPExpand(hrp), data...)
	return bech32Polymod(values) == 1
}

// EncodeBech32 encodes raw with the given human-readable prefix per BIP-173.
func EncodeBech32(hrp string, data []byte) (string, error) {
	values, err := convertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	checksum := bech32CreateChecksum(hrp, values)
	combined := append(values, checksum...)
	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range combined {
		sb.WriteByte(bech32Charset[b])
	}
	return sb.String(), nil
}

// DecodeBech32 decodes s, returning its human-readable prefix and raw data.
func DecodeBech32(s string) (string, []byte, error) {
	s = strings.ToLower(s)
	pos := strings.LastIndexByte(s, '1')
	if pos < 1 || pos+7 > len(s) {
		return "", nil, ErrInvalidBech32
	}
	hrp := s[:pos]
	dataPart := s[pos+1:]
	values := make([]byte, len(dataPart))
	for i, c := range dataPart {
		idx := strings.IndexByte(bech32Charset, byte(c))
		if idx < 0 {
			return "", nil, ErrInvalidBech32
		}
		values[i] = byte(idx)
	}
	if !bech32VerifyChecksum(hrp, values) {
		return "", nil, ErrInvalidBech32
	}
	raw, err := convertBits(values[:len(values)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, raw, nil
}

func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1<<toBits) - 1
	var out []byte
	for _, value := range data {
		if uint32(value)>>fromBits != 0 {
			return nil, ErrInvalidBech32
		}
		acc = (acc << fromBits) | uint32(value)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
	} else if bits >= fromBits || ((acc<<(toBits-bits))&maxv) != 0 {
		return nil, ErrInvalidBech32
	}
	return out, nil
}
