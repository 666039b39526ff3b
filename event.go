package locator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/dynrelay/locator/internal/relaywire"
)

// KindLocator is the parameterized replaceable event kind this module
// publishes and resolves records under.
const KindLocator = 30058

// Event aliases internal/relaywire.Event so RelayPool implementations
// outside this package (wsrelay, mockpool) can satisfy RelayPool without
// importing this package.
type Event = relaywire.Event

// ContentMode selects how BuildEvent encrypts (or doesn't) a payload before
// embedding it as event content.
type ContentMode struct {
	kind       contentModeKind
	peer       string
	recipients []string
}

type contentModeKind int

const (
	modePublic contentModeKind = iota
	modeSelf
	modeTargeted
	modeWrapped
)

// PublicContent embeds the payload as plain JSON.
func PublicContent() ContentMode { return ContentMode{kind: modePublic} }

// SelfContent encrypts the payload to the publisher's own key, so only the
// publisher's signer can read it back.
func SelfContent() ContentMode { return ContentMode{kind: modeSelf} }

// TargetedContent encrypts the payload to a single recipient's hex public
// key.
func TargetedContent(peerPubKeyHex string) ContentMode {
	return ContentMode{kind: modeTargeted, peer: peerPubKeyHex}
}

// WrappedContentFor encrypts the payload once under an ephemeral session
// key, then wraps that session key individually for each recipient.
func WrappedContentFor(recipientPubKeyHexes []string) ContentMode {
	return ContentMode{kind: modeWrapped, recipients: recipientPubKeyHexes}
}

// BuildEvent assembles and signs a kind-30058 event carrying payload under
// identifier, encrypted per mode. A non-zero expiresAt emits the
// NIP-40-style ["expiration", epoch] tag that decodeAndCheckFreshness
// folds into its min(explicit, calculated) freshness window; the zero
// value omits the tag entirely.
func BuildEvent(ctx context.Context, payload []byte, identifier string, mode ContentMode, signer Signer, now time.Time, private bool, expiresAt time.Time) (*Event, error) {
	if identifier == "" {
		return nil, &ArgumentError{Field: "identifier", Err: errMissingField}
	}
	content, err := encodeContent(ctx, payload, mode, signer)
	if err != nil {
		return nil, err
	}
	tags := [][]string{{"d", identifier}}
	if private {
		tags = append(tags, []string{"private", "true"})
	}
	if !expiresAt.IsZero() {
		tags = append(tags, []string{"expiration", strconv.FormatInt(expiresAt.Unix(), 10)})
	}
	unsigned := &Event{
		PubKey:    signer.PublicKey(),
		CreatedAt: now.Unix(),
		Kind:      KindLocator,
		Tags:      tags,
		Content:   content,
	}
	return signer.Sign(ctx, unsigned)
}

// canonicalSerialization reproduces NIP-01's id-hashing array:
// [0, pubkey, created_at, kind, tags, content].
func canonicalSerialization(e *Event) ([]byte, error) {
	arr := []any{0, e.PubKey, e.CreatedAt, e.Kind, e.Tags, e.Content}
	return json.Marshal(arr)
}

func computeEventID(e *Event) ([32]byte, error) {
	b, err := canonicalSerialization(e)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(b), nil
}

// VerifyEvent recomputes e's id from its signed fields and checks e.Sig
// against it. A non-nil error means the event must be dropped: a forged
// or malformed record is indistinguishable from a missing one to a caller
// of Resolve. Expiry is not checked here.
func VerifyEvent(e *Event) error {
	idBytes, err := computeEventID(e)
	if err != nil {
		return err
	}
	wantID := hex.EncodeToString(idBytes[:])
	if wantID != e.ID {
		return errSignatureInvalid
	}
	sigBytes, err := hex.DecodeString(e.Sig)
	if err != nil || len(sigBytes) != 64 {
		return errSignatureInvalid
	}
	var sig [64]byte
	copy(sig[:], sigBytes)
	ok, err := ActiveVerifier.VerifySignature(e.PubKey, idBytes, sig)
	if err != nil || !ok {
		return errSignatureInvalid
	}
	return nil
}

// expirationTag returns the unix timestamp in e's "expiration" tag, if
// present.
func expirationTag(e *Event) (int64, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "expiration" {
			ts, err := strconv.ParseInt(tag[1], 10, 64)
			if err == nil {
				return ts, true
			}
		}
	}
	return 0, false
}

func identifierTag(e *Event) (string, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == "d" {
			return tag[1], true
		}
	}
	return "", false
}
