// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Kind tags the shape of the value held by an Entry.
type Kind string

const (
	KindSimple     Kind = "simple"
	KindDetailed   Kind = "detailed"
	KindDynamic    Kind = "dynamic"
	KindSimilarity Kind = "similarity"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSimple, KindDetailed, KindDynamic, KindSimilarity:
		return true
	}
	return false
}

// Entry is a single cached response. Value holds the response exactly as it
// was decoded from the wire; Kind says how to read it back.
type Entry struct {
	Kind     Kind            `json:"kind"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at,omitzero"`
}

// UnmarshalJSON accepts both the tagged form written by this package and the
// bare response values found in older snapshots. A bare value comes back with
// an empty Kind and is classified by the Cache on load.
func (e *Entry) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	kind := doc.Get("kind")
	value := doc.Get("value")

	if doc.IsObject() && kind.Type == gjson.String && value.Exists() {
		e.Kind = Kind(kind.Str)
		e.Value = json.RawMessage(value.Raw)
		if ts := doc.Get("stored_at"); ts.Exists() {
			if t, err := time.Parse(time.RFC3339Nano, ts.Str); err == nil {
				e.StoredAt = t
			}
		}
		return nil
	}

	if !gjson.ValidBytes(data) {
		return ErrInvalidEntry
	}

	e.Kind = ""
	e.Value = append(json.RawMessage(nil), data...)
	e.StoredAt = time.Time{}
	return nil
}

// Snapshot is the full key to entry mapping as it is loaded and saved.
type Snapshot map[string]Entry

// Clone returns a copy of s that shares no memory with it.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		v.Value = append(json.RawMessage(nil), v.Value...)
		out[k] = v
	}
	return out
}
