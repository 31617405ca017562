// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package vladhog

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// SimpleResult is the response of the URL check endpoint.
type SimpleResult struct {
	Result Verdict `json:"result"`
}

// DetailedResult is the response of the classify_link endpoint. It is handed
// back to callers as received.
type DetailedResult struct {
	Result        string `json:"result"`
	ScreenshotURL string `json:"screenshot_url,omitempty"`
	Tag           string `json:"tag,omitempty"`
}

// DynamicAnalysisResult is the response of the dynamic analysis service.
// Response is the service's own status token, kept exactly as sent; only the
// string "200" carries a usable Result.
type DynamicAnalysisResult struct {
	Response json.RawMessage `json:"response,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Result   Verdict         `json:"result"`
}

// UnmarshalJSON keeps response as its raw token and tolerates a reason of any
// type.
func (d *DynamicAnalysisResult) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return errors.New("dynamic analysis result is not an object")
	}

	var verdict Verdict
	if res := r.Get("result"); res.Exists() {
		if err := verdict.UnmarshalJSON([]byte(res.Raw)); err != nil {
			return err
		}
	}

	*d = DynamicAnalysisResult{
		Reason: r.Get("reason").String(),
		Result: verdict,
	}
	if resp := r.Get("response"); resp.Exists() {
		d.Response = json.RawMessage(resp.Raw)
	}
	return nil
}

// Status returns the response token as text.
func (d DynamicAnalysisResult) Status() string {
	return gjson.ParseBytes(d.Response).String()
}

// Succeeded reports whether the analysis completed. A bare number 200 does not
// count.
func (d DynamicAnalysisResult) Succeeded() bool {
	r := gjson.ParseBytes(d.Response)
	return r.Type == gjson.String && r.Str == "200"
}

// DomainSimilarityResult is one look-alike domain found by the similarity
// service.
type DomainSimilarityResult struct {
	SimilarTo         string  `json:"similar_to"`
	SimilarityPercent float64 `json:"similarity_percent"`
}
