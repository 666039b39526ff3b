package locator

import (
	"encoding/json"
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestPayloadRoundTrip(t *testing.T) {
	p := &Payload{
		V:         1,
		TTL:       600,
		UpdatedAt: 1700000000,
		Endpoints: []Endpoint{
			{Type: "tcp", URL: "1.2.3.4:8080", Priority: intPtr(10), Family: "ipv4"},
			{Type: "tcp", URL: "abcxyz.onion:8080", Family: "onion"},
		},
		Caps:  []string{"relay", "gossip"},
		Notes: "test payload",
		Extra: map[string]json.RawMessage{},
	}

	encoded, err := EncodePayload(p)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	decoded, err := DecodePayload(encoded)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if !reflect.DeepEqual(p, decoded) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", decoded, p)
	}
}

func TestDecodePayloadAcceptsLegacyURIKey(t *testing.T) {
	raw := []byte(`{"v":1,"ttl":60,"updated_at":1,"endpoints":[{"type":"tcp","uri":"10.0.0.1:80"}]}`)
	p, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if len(p.Endpoints) != 1 || p.Endpoints[0].URL != "10.0.0.1:80" {
		t.Fatalf("expected uri to populate URL, got %+v", p.Endpoints)
	}
}

func TestDecodePayloadPreservesUnknownFields(t *testing.T) {
	raw := []byte(`{"v":1,"ttl":60,"updated_at":1,"endpoints":[],"future_field":"kept"}`)
	p, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if string(p.Extra["future_field"]) != `"kept"` {
		t.Fatalf("expected unknown field to survive decode, got %v", p.Extra)
	}
	reencoded, err := EncodePayload(p)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(reencoded, &back); err != nil {
		t.Fatalf("unmarshal reencoded: %v", err)
	}
	if string(back["future_field"]) != `"kept"` {
		t.Fatalf("expected unknown field to survive encode, got %v", back)
	}
}

func TestDecodePayloadRejectsMissingFields(t *testing.T) {
	cases := []string{
		`{"ttl":60,"updated_at":1,"endpoints":[]}`,
		`{"v":1,"updated_at":1,"endpoints":[]}`,
		`{"v":1,"ttl":60,"endpoints":[]}`,
		`{"v":1,"ttl":60,"updated_at":1}`,
	}
	for _, raw := range cases {
		if _, err := DecodePayload([]byte(raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestEndpointEffectivePriority(t *testing.T) {
	withNil := Endpoint{}
	if got := withNil.EffectivePriority(); got != 1000 {
		t.Fatalf("absent priority = %d, want 1000", got)
	}
	withZero := Endpoint{Priority: intPtr(0)}
	if got := withZero.EffectivePriority(); got != 0 {
		t.Fatalf("explicit zero priority = %d, want 0", got)
	}
}
