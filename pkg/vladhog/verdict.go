// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package vladhog

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Scores returned by MapResultToNumber.
const (
	ScoreUnknown   float64 = -1
	ScoreSafe      float64 = 0
	ScoreClean     float64 = 0.5
	ScoreMalicious float64 = 1
)

// Verdict texts the service is known to return.
const (
	VerdictLikelySafe       = "Likely safe"
	VerdictSafe             = "Safe"
	VerdictNothingDetected  = "The system didn't detect anything malicious."
	VerdictMightBeMalicious = "Might be malicious"
)

// Verdict is the service's judgment on a URL. It arrives either as a single
// string or as a list of detections.
type Verdict struct {
	Text       string
	Detections []string
	IsList     bool
}

// TextVerdict returns a single string verdict.
func TextVerdict(s string) Verdict {
	return Verdict{Text: s}
}

// ListVerdict returns a list verdict holding the given detections.
func ListVerdict(detections ...string) Verdict {
	if detections == nil {
		detections = []string{}
	}
	return Verdict{Detections: detections, IsList: true}
}

// UnmarshalJSON accepts a string, an array, or null. Any other JSON value is
// kept in its raw form as Text, which maps to ScoreUnknown.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	*v = Verdict{}

	switch {
	case r.IsArray():
		v.IsList = true
		v.Detections = []string{}
		for _, item := range r.Array() {
			v.Detections = append(v.Detections, item.String())
		}
	case r.Type == gjson.String:
		v.Text = r.Str
	case r.Type == gjson.Null:
	default:
		v.Text = r.Raw
	}
	return nil
}

// MarshalJSON writes the verdict back in the shape it was received.
func (v Verdict) MarshalJSON() ([]byte, error) {
	if v.IsList {
		d := v.Detections
		if d == nil {
			d = []string{}
		}
		return json.Marshal(d)
	}
	return json.Marshal(v.Text)
}

// String returns the text, or the detections joined by ", ".
func (v Verdict) String() string {
	if !v.IsList {
		return v.Text
	}
	out := ""
	for i, d := range v.Detections {
		if i > 0 {
			out += ", "
		}
		out += d
	}
	return out
}

// MapResultToNumber converts a verdict into a score. Any list counts as a
// set of detections and is malicious, whatever it holds.
func MapResultToNumber(v Verdict) float64 {
	if v.IsList {
		return ScoreMalicious
	}

	switch v.Text {
	case VerdictLikelySafe, VerdictSafe:
		return ScoreSafe
	case VerdictNothingDetected:
		return ScoreClean
	case VerdictMightBeMalicious:
		return ScoreMalicious
	default:
		return ScoreUnknown
	}
}
