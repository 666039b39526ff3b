// Package relaywire holds the wire-level types the locator root package
// and its RelayPool implementations (wsrelay, mockpool) share. Splitting
// them out here avoids a locator <-> wsrelay import cycle: wsrelay needs
// the Event/Filter/PublishOutcome shapes but must never import the
// package that depends on it.
package relaywire

import "time"

// Event is a Nostr event, trimmed to the fields the locator event codec
// reads and writes. The locator package exposes this as locator.Event via
// a type alias.
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Filter mirrors the subset of the relay subscription-filter grammar this
// module needs.
type Filter struct {
	Authors []string
	Kinds   []int
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Tags    map[string][]string
}

// PublishOutcome is one relay's response to a single publish attempt.
type PublishOutcome struct {
	Relay   string
	OK      bool
	Message string
	Err     error
}

// QueryOutcome is one relay's outcome for a single Query call: Err is set
// when the relay could not be reached or rejected the subscription, and
// left nil when it answered (even with zero matching events).
type QueryOutcome struct {
	Relay string
	Err   error
}
