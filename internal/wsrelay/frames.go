package wsrelay

import (
	"encoding/json"

	"github.com/dynrelay/locator/internal/relaywire"
)

// wireFilter is the REQ filter object relays expect on the wire. The
// resolver never supplies Tags (see locator's Open Question 1 resolution)
// so there is no "#d" key here; identifier matching happens client-side.
type wireFilter struct {
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

func toWireFilter(f relaywire.Filter) wireFilter {
	wf := wireFilter{Authors: f.Authors, Kinds: f.Kinds, Limit: f.Limit}
	if f.Since != nil {
		ts := f.Since.Unix()
		wf.Since = &ts
	}
	if f.Until != nil {
		ts := f.Until.Unix()
		wf.Until = &ts
	}
	return wf
}

func encodeReq(subID string, filter relaywire.Filter) ([]byte, error) {
	return json.Marshal([]any{"REQ", subID, toWireFilter(filter)})
}

func encodeClose(subID string) ([]byte, error) {
	return json.Marshal([]any{"CLOSE", subID})
}

func encodeEvent(event *relaywire.Event) ([]byte, error) {
	return json.Marshal([]any{"EVENT", event})
}

// inboundFrame is the generic shape every relay->client message starts
// with: a label followed by label-specific fields.
type inboundFrame struct {
	Label string
	Raw   []json.RawMessage
}

func parseInboundFrame(raw []byte) (inboundFrame, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return inboundFrame{}, err
	}
	if len(parts) == 0 {
		return inboundFrame{}, errEmptyFrame
	}
	var label string
	if err := json.Unmarshal(parts[0], &label); err != nil {
		return inboundFrame{}, err
	}
	return inboundFrame{Label: label, Raw: parts[1:]}, nil
}
