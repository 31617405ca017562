// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	"github.com/staranto/vhsecgo/pkg/vladhog"
)

// CheckRow is one result of check.
type CheckRow struct {
	URL    string   `json:"url"`
	Score  *float64 `json:"score"`
	Rating string   `json:"rating"`
	Error  string   `json:"error,omitempty"`
}

// DetailRow is one result of detail.
type DetailRow struct {
	URL           string `json:"url"`
	Result        string `json:"result"`
	Tag           string `json:"tag"`
	ScreenshotURL string `json:"screenshot_url"`
	Error         string `json:"error,omitempty"`
}

// DynamicRow is one result of dynamic.
type DynamicRow struct {
	URL    string   `json:"url"`
	Score  *float64 `json:"score"`
	Rating string   `json:"rating"`
	Error  string   `json:"error,omitempty"`
}

// SimilarRow is one look-alike of a domain. A domain with no look-alikes
// yields a single row with only Domain set.
type SimilarRow struct {
	Domain            string   `json:"domain"`
	SimilarTo         string   `json:"similar_to"`
	SimilarityPercent *float64 `json:"similarity_percent,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// ScreenshotRow is the screenshot URL of one file name.
type ScreenshotRow struct {
	File string `json:"file"`
	URL  string `json:"url"`
}

// CacheRow is one entry of the cache.
type CacheRow struct {
	Key      string    `json:"key"`
	Kind     string    `json:"kind"`
	StoredAt time.Time `json:"stored_at,omitzero"`
	Size     int       `json:"size"`
}

// CacheInfoRow describes the cache as a whole.
type CacheInfoRow struct {
	Backend  string `json:"backend"`
	Location string `json:"location"`
	Entries  int    `json:"entries"`
	Exists   bool   `json:"exists"`
	Size     string `json:"size"`
	Modified string `json:"modified"`
	Enabled  bool   `json:"enabled"`
}

// rating names a score.
func rating(score float64) string {
	switch score {
	case vladhog.ScoreSafe:
		return "safe"
	case vladhog.ScoreClean:
		return "clean"
	case vladhog.ScoreMalicious:
		return "malicious"
	default:
		return "unknown"
	}
}
