package cryptoutil

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	pubHex := XOnlyPubKeyHex(priv.PubKey())
	hash := sha256.Sum256([]byte("resolve me"))

	sig, err := Sign(priv, hash)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := Verify(pubHex, hash, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}

	otherHash := sha256.Sum256([]byte("tampered"))
	ok, err = Verify(pubHex, otherHash, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected signature over a different hash to fail")
	}
}

func TestConversationKeySymmetric(t *testing.T) {
	alice, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	bob, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	kAB, err := ConversationKey(alice, bob.PubKey())
	if err != nil {
		t.Fatalf("ConversationKey(alice, bob): %v", err)
	}
	kBA, err := ConversationKey(bob, alice.PubKey())
	if err != nil {
		t.Fatalf("ConversationKey(bob, alice): %v", err)
	}
	if kAB != kBA {
		t.Fatal("conversation key must be symmetric across both directions")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	key, err := ConversationKey(priv, priv.PubKey())
	if err != nil {
		t.Fatalf("ConversationKey: %v", err)
	}

	plaintext := []byte(`{"v":1,"ttl":3600,"updated_at":1,"endpoints":[]}`)
	encoded, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	decoded, err := Decrypt(key, encoded)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(decoded, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, plaintext)
	}

	var wrongKey [32]byte
	if _, err := Decrypt(wrongKey, encoded); err == nil {
		t.Fatal("expected decryption under the wrong key to fail")
	}
}

func TestBech32RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		hrp  string
	}{
		{"pubkey", HRPPublicKey},
		{"secretkey", HRPSecretKey},
	}
	raw := bytes.Repeat([]byte{0xab}, 32)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeBech32(tc.hrp, raw)
			if err != nil {
				t.Fatalf("EncodeBech32: %v", err)
			}
			hrp, decoded, err := DecodeBech32(encoded)
			if err != nil {
				t.Fatalf("DecodeBech32: %v", err)
			}
			if hrp != tc.hrp {
				t.Fatalf("hrp = %q, want %q", hrp, tc.hrp)
			}
			if !bytes.Equal(decoded, raw) {
				t.Fatalf("decoded = %x, want %x", decoded, raw)
			}
		})
	}
}

func TestBech32CodecWrongPrefix(t *testing.T) {
	codec := Bech32Codec{}
	npub, err := codec.EncodeNpub("ab000000000000000000000000000000000000000000000000000000000000ff")
	if err != nil {
		t.Fatalf("EncodeNpub: %v", err)
	}
	if _, err := codec.DecodeNsec(npub); err != ErrWrongPrefix {
		t.Fatalf("DecodeNsec(npub...) = %v, want ErrWrongPrefix", err)
	}
}
