package locator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/dynrelay/locator/internal/cryptoutil"
)

// WrappedContent is the event-content shape a WrappedContentFor record
// uses: one payload ciphertext, plus a per-recipient wrap of the ephemeral
// session key that opens it.
type WrappedContent struct {
	Ciphertext string            `json:"ciphertext"`
	Wraps      map[string]string `json:"wraps"`
}

func encodeContent(ctx context.Context, payload []byte, mode ContentMode, signer Signer) (string, error) {
	switch mode.kind {
	case modePublic:
		return string(payload), nil
	case modeSelf:
		key, err := signer.ConversationKey(ctx, signer.PublicKey())
		if err != nil {
			return "", err
		}
		return ActiveCipher.Encrypt(key, payload)
	case modeTargeted:
		if mode.peer == "" {
			return "", &ArgumentError{Field: "peer", Err: errMissingField}
		}
		key, err := signer.ConversationKey(ctx, mode.peer)
		if err != nil {
			return "", err
		}
		return ActiveCipher.Encrypt(key, payload)
	case modeWrapped:
		return encodeWrapped(ctx, payload, mode.recipients, signer)
	default:
		return "", &ArgumentError{Field: "mode", Err: errUnknownMode}
	}
}

// encodeWrapped seals payload under a fresh ephemeral session identity's
// self-conversation key, then wraps that session secret for each recipient
// under the signer's conversation key with them. Opening it requires
// recovering the session secret first, then re-deriving its self key.
func encodeWrapped(ctx context.Context, payload []byte, recipients []string, signer Signer) (string, error) {
	if len(recipients) == 0 {
		return "", &ArgumentError{Field: "recipients", Err: errMissingField}
	}
	sessionPriv, err := cryptoutil.GenerateKeyPair()
	if err != nil {
		return "", err
	}
	sessionKey, err := cryptoutil.ConversationKey(sessionPriv, sessionPriv.PubKey())
	if err != nil {
		return "", err
	}
	ciphertext, err := ActiveCipher.Encrypt(sessionKey, payload)
	if err != nil {
		return "", err
	}

	sessionSecretHex := hex.EncodeToString(sessionPriv.Serialize())
	wraps := make(map[string]string, len(recipients))
	for _, recipient := range recipients {
		convKey, err := signer.ConversationKey(ctx, recipient)
		if err != nil {
			return "", err
		}
		wrapped, err := ActiveCipher.Encrypt(convKey, []byte(sessionSecretHex))
		if err != nil {
			return "", err
		}
		wraps[recipient] = wrapped
	}

	b, err := json.Marshal(WrappedContent{Ciphertext: ciphertext, Wraps: wraps})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecryptEvent extracts the payload bytes from e's content on behalf of
// caller. The returned bool is false when caller is not a recipient of a
// wrapped record, which is not an error: the record simply isn't for them.
func DecryptEvent(ctx context.Context, e *Event, caller Signer) ([]byte, bool, error) {
	content := e.Content
	if looksWrapped(content) {
		return decryptWrapped(ctx, content, e.PubKey, caller)
	}
	if caller != nil && !strings.HasPrefix(strings.TrimSpace(content), "{") {
		key, err := caller.ConversationKey(ctx, e.PubKey)
		if err != nil {
			return nil, false, err
		}
		plaintext, err := ActiveCipher.Decrypt(key, content)
		if err != nil {
			return nil, false, &DecryptionError{Err: err}
		}
		return plaintext, true, nil
	}
	return []byte(content), true, nil
}

// looksWrapped decides whether content is a WrappedContent document. It
// first tries a strict parse requiring a JSON object with both top-level
// ciphertext and wraps keys (other keys and the value types are not
// checked); only when that fails but the legacy substring markers are both present
// does it fall back to the older heuristic, which it logs so wire drift is
// visible.
func looksWrapped(content string) bool {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
		_, hasCiphertext := probe["ciphertext"]
		_, hasWraps := probe["wraps"]
		if hasCiphertext && hasWraps {
			return true
		}
	}
	if strings.Contains(content, `"wraps"`) && strings.Contains(content, `"ciphertext"`) {
		slog.Warn("locator: wrapped content detected via legacy substring heuristic, not strict shape match")
		return true
	}
	return false
}

func decryptWrapped(ctx context.Context, content, authorPubKeyHex string, caller Signer) ([]byte, bool, error) {
	var wc WrappedContent
	if err := json.Unmarshal([]byte(content), &wc); err != nil {
		return nil, false, &DecryptionError{Err: err}
	}
	if caller == nil {
		return nil, false, nil
	}
	wrapped, found := wc.Wraps[caller.PublicKey()]
	if !found {
		return nil, false, nil
	}
	convKey, err := caller.ConversationKey(ctx, authorPubKeyHex)
	if err != nil {
		return nil, false, err
	}
	sessionSecretHex, err := ActiveCipher.Decrypt(convKey, wrapped)
	if err != nil {
		return nil, false, &DecryptionError{Err: err}
	}
	sessionPriv, err := cryptoutil.SecretFromHex(string(sessionSecretHex))
	if err != nil {
		return nil, false, &DecryptionError{Err: err}
	}
	sessionKey, err := cryptoutil.ConversationKey(sessionPriv, sessionPriv.PubKey())
	if err != nil {
		return nil, false, err
	}
	plaintext, err := ActiveCipher.Decrypt(sessionKey, wc.Ciphertext)
	if err != nil {
		return nil, false, &DecryptionError{Err: err}
	}
	return plaintext, true, nil
}
