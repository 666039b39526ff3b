package locator

import "encoding/json"

// PayloadVersion is the current wire version this package emits. Any
// breaking change to the payload shape must bump it.
const PayloadVersion = 1

// Endpoint describes one reachable address a Payload advertises.
type Endpoint struct {
	Type           string
	URL            string
	Priority       *int
	Family         string
	KeyFingerprint string
}

// EffectivePriority returns the endpoint's priority, treating an absent
// value as 1000 per the selector's ordering rule.
func (e Endpoint) EffectivePriority() int {
	if e.Priority == nil {
		return 1000
	}
	return *e.Priority
}

type endpointWire struct {
	Type           string `json:"type"`
	URL            string `json:"url,omitempty"`
	URI            string `json:"uri,omitempty"`
	Priority       *int   `json:"priority,omitempty"`
	Family         string `json:"family,omitempty"`
	KeyFingerprint string `json:"k,omitempty"`
}

// MarshalJSON always emits the address under "url"; payload v1 never
// writes the legacy "uri" key.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(endpointWire{
		Type:           e.Type,
		URL:            e.URL,
		Priority:       e.Priority,
		Family:         e.Family,
		KeyFingerprint: e.KeyFingerprint,
	})
}

// UnmarshalJSON accepts either "url" or "uri" for the address field.
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	var w endpointWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	addr := w.URL
	if addr == "" {
		addr = w.URI
	}
	e.Type = w.Type
	e.URL = addr
	e.Priority = w.Priority
	e.Family = w.Family
	e.KeyFingerprint = w.KeyFingerprint
	return nil
}

// Payload is the decrypted record content: the TTL/freshness envelope plus
// the endpoint list a resolving peer should try.
type Payload struct {
	V         int
	TTL       int64
	UpdatedAt int64
	Endpoints []Endpoint
	Caps      []string
	Notes     string

	// Extra preserves unrecognized top-level keys verbatim across a
	// decode/encode round trip, so a newer publisher's fields survive an
	// older resolver.
	Extra map[string]json.RawMessage
}

var payloadKnownKeys = map[string]struct{}{
	"v": {}, "ttl": {}, "updated_at": {}, "endpoints": {}, "caps": {}, "notes": {},
}

// DecodePayload parses a payload JSON document, validating the required
// fields and their types.
func DecodePayload(data []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ArgumentError{Field: "payload", Err: err}
	}

	p := &Payload{Extra: map[string]json.RawMessage{}}

	vRaw, ok := raw["v"]
	if !ok {
		return nil, &ArgumentError{Field: "v", Err: errMissingField}
	}
	if err := json.Unmarshal(vRaw, &p.V); err != nil {
		return nil, &ArgumentError{Field: "v", Err: err}
	}
	if p.V < 1 {
		return nil, &ArgumentError{Field: "v", Err: errInvalidVersion}
	}

	ttlRaw, ok := raw["ttl"]
	if !ok {
		return nil, &ArgumentError{Field: "ttl", Err: errMissingField}
	}
	if err := json.Unmarshal(ttlRaw, &p.TTL); err != nil {
		return nil, &ArgumentError{Field: "ttl", Err: err}
	}
	if p.TTL < 0 {
		return nil, &ArgumentError{Field: "ttl", Err: errNegativeTTL}
	}

	updatedRaw, ok := raw["updated_at"]
	if !ok {
		return nil, &ArgumentError{Field: "updated_at", Err: errMissingField}
	}
	if err := json.Unmarshal(updatedRaw, &p.UpdatedAt); err != nil {
		return nil, &ArgumentError{Field: "updated_at", Err: err}
	}

	endpointsRaw, ok := raw["endpoints"]
	if !ok {
		return nil, &ArgumentError{Field: "endpoints", Err: errMissingField}
	}
	if err := json.Unmarshal(endpointsRaw, &p.Endpoints); err != nil {
		return nil, &ArgumentError{Field: "endpoints", Err: err}
	}
	if p.Endpoints == nil {
		return nil, &ArgumentError{Field: "endpoints", Err: errNotArray}
	}

	if capsRaw, ok := raw["caps"]; ok {
		if err := json.Unmarshal(capsRaw, &p.Caps); err != nil {
			return nil, &ArgumentError{Field: "caps", Err: err}
		}
	}
	if notesRaw, ok := raw["notes"]; ok {
		if err := json.Unmarshal(notesRaw, &p.Notes); err != nil {
			return nil, &ArgumentError{Field: "notes", Err: err}
		}
	}

	for k, v := range raw {
		if _, known := payloadKnownKeys[k]; !known {
			p.Extra[k] = v
		}
	}
	return p, nil
}

// EncodePayload serializes p to its canonical JSON shape.
func EncodePayload(p *Payload) ([]byte, error) {
	if p.V < 1 {
		return nil, &ArgumentError{Field: "v", Err: errInvalidVersion}
	}
	if p.TTL < 0 {
		return nil, &ArgumentError{Field: "ttl", Err: errNegativeTTL}
	}
	if p.Endpoints == nil {
		return nil, &ArgumentError{Field: "endpoints", Err: errNotArray}
	}

	out := map[string]json.RawMessage{}
	set := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if err := set("v", p.V); err != nil {
		return nil, err
	}
	if err := set("ttl", p.TTL); err != nil {
		return nil, err
	}
	if err := set("updated_at", p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := set("endpoints", p.Endpoints); err != nil {
		return nil, err
	}
	if len(p.Caps) > 0 {
		if err := set("caps", p.Caps); err != nil {
			return nil, err
		}
	}
	if p.Notes != "" {
		if err := set("notes", p.Notes); err != nil {
			return nil, err
		}
	}
	for k, v := range p.Extra {
		if _, known := payloadKnownKeys[k]; known {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}
