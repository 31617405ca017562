// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/staranto/vhsecgo/internal/attrs"
)

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		delimiter string
		want      []Filter
	}{
		{
			name: "empty spec",
			spec: "",
		},
		{
			name: "exact match",
			spec: "verdict=Safe",
			want: []Filter{{Key: "verdict", Operand: "=", Target: "Safe"}},
		},
		{
			name: "negated exact match",
			spec: "verdict!=Safe",
			want: []Filter{{Key: "verdict", Operand: "=", Target: "Safe", Negate: true}},
		},
		{
			name: "prefix",
			spec: "url^https://",
			want: []Filter{{Key: "url", Operand: "^", Target: "https://"}},
		},
		{
			name: "target holding an operator",
			spec: "url=https://example.com/?q=1",
			want: []Filter{{Key: "url", Operand: "=", Target: "https://example.com/?q=1"}},
		},
		{
			name: "two character operators",
			spec: "score>=0.5,score<=1",
			want: []Filter{
				{Key: "score", Operand: ">=", Target: "0.5"},
				{Key: "score", Operand: "<=", Target: "1"},
			},
		},
		{
			name: "negated two character operator",
			spec: "score!>=1",
			want: []Filter{{Key: "score", Operand: ">=", Target: "1", Negate: true}},
		},
		{
			name: "regex",
			spec: "tag/^(news|blog)$",
			want: []Filter{{Key: "tag", Operand: "/", Target: "^(news|blog)$"}},
		},
		{
			name: "invalid entries skipped",
			spec: "verdict=Safe,nonsense,=orphan,score>0",
			want: []Filter{
				{Key: "verdict", Operand: "=", Target: "Safe"},
				{Key: "score", Operand: ">", Target: "0"},
			},
		},
		{
			name:      "custom delimiter",
			spec:      "detections@phishing,malware|score>0",
			delimiter: "|",
			want: []Filter{
				{Key: "detections", Operand: "@", Target: "phishing,malware"},
				{Key: "score", Operand: ">", Target: "0"},
			},
		},
		{
			name: "path key",
			spec: "similar[0].similar_to^exam",
			want: []Filter{{Key: "similar[0].similar_to", Operand: "^", Target: "exam"}},
		},
		{
			name: "empty target",
			spec: "tag=",
			want: []Filter{{Key: "tag", Operand: "=", Target: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delimiter != "" {
				t.Setenv("VHSEC_FILTER_DELIM", tt.delimiter)
			}

			got := BuildFilters(tt.spec)
			assert.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				if i < len(got) {
					assert.Equal(t, want, got[i])
				}
			}
		})
	}
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		filter Filter
		want   bool
	}{
		{name: "string equal", value: "Safe", filter: Filter{Operand: "=", Target: "Safe"}, want: true},
		{name: "string not equal", value: "Safe", filter: Filter{Operand: "=", Target: "Safe", Negate: true}, want: false},
		{name: "fold", value: "SAFE", filter: Filter{Operand: "~", Target: "safe"}, want: true},
		{name: "fold is not contains", value: "Likely safe", filter: Filter{Operand: "~", Target: "safe"}, want: false},
		{name: "prefix", value: "https://example.com", filter: Filter{Operand: "^", Target: "https"}, want: true},
		{name: "contains", value: "Might be malicious", filter: Filter{Operand: "@", Target: "malicious"}, want: true},
		{name: "negated contains", value: "Safe", filter: Filter{Operand: "@", Target: "malicious", Negate: true}, want: true},
		{name: "regex", value: "examp1e.com", filter: Filter{Operand: "/", Target: `\d`}, want: true},
		{name: "bad regex", value: "x", filter: Filter{Operand: "/", Target: "["}, want: false},
		{name: "string order", value: "b", filter: Filter{Operand: ">=", Target: "b"}, want: true},
		{name: "unknown operand", value: "x", filter: Filter{Operand: "?", Target: "x"}, want: false},
		{name: "bool", value: true, filter: Filter{Operand: "=", Target: "true"}, want: true},
		{name: "score equal", value: 0.5, filter: Filter{Operand: "=", Target: "0.5"}, want: true},
		{name: "score above", value: 1.0, filter: Filter{Operand: ">", Target: "0.5"}, want: true},
		{name: "score at least", value: 0.5, filter: Filter{Operand: ">=", Target: "0.5"}, want: true},
		{name: "score at most", value: 0.0, filter: Filter{Operand: "<=", Target: "-1"}, want: false},
		{name: "unknown score", value: -1.0, filter: Filter{Operand: "<", Target: "0"}, want: true},
		{name: "negated numeric", value: -1.0, filter: Filter{Operand: "=", Target: "-1", Negate: true}, want: false},
		{name: "int", value: 3, filter: Filter{Operand: ">", Target: "2"}, want: true},
		{name: "bad numeric target", value: 1.0, filter: Filter{Operand: "=", Target: "high"}, want: false},
		{name: "numeric prefix unsupported", value: 1.0, filter: Filter{Operand: "^", Target: "1"}, want: false},
		{name: "list membership", value: []interface{}{"phishing", "malware"}, filter: Filter{Operand: "@", Target: "malware"}, want: true},
		{name: "list non membership", value: []interface{}{"phishing"}, filter: Filter{Operand: "@", Target: "malware", Negate: true}, want: true},
		{name: "numeric list membership", value: []interface{}{92.5, 88.0}, filter: Filter{Operand: "@", Target: "88"}, want: true},
		{name: "map key", value: map[string]interface{}{"tag": "news"}, filter: Filter{Operand: "@", Target: "tag"}, want: true},
		{name: "list with equals passes", value: []interface{}{"a"}, filter: Filter{Operand: "=", Target: "b"}, want: true},
		{name: "unsupported type", value: struct{}{}, filter: Filter{Operand: "=", Target: "x"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.value))
		})
	}
}

func TestCheckContainsOperand_Unsupported(t *testing.T) {
	assert.False(t, checkContainsOperand(42, Filter{Operand: "@", Target: "4"}))
}

func TestToFloat64(t *testing.T) {
	for _, v := range []interface{}{0.5, float32(0.5), 1, int64(1), int32(1), uint(1), uint32(1), uint64(1)} {
		_, ok := toFloat64(v)
		assert.True(t, ok, "%T", v)
	}
	for _, v := range []interface{}{"1", nil, true} {
		_, ok := toFloat64(v)
		assert.False(t, ok, "%T", v)
	}
}

const rows = `[
	{"url": "https://example.com", "score": 0, "verdict": "Safe", "tag": "news"},
	{"url": "http://examp1e.com", "score": 1, "verdict": "Might be malicious", "detections": ["phishing"]},
	{"url": "https://blog.example.org", "score": 0.5, "verdict": "The system didn't detect anything malicious.", "tag": null},
	{"url": "https://unknown.test", "score": -1, "verdict": ""}
]`

func TestApplyFilters(t *testing.T) {
	attrList := attrs.AttrList{
		{Key: "url", OutputKey: "url", Include: true},
		{Key: "score", OutputKey: "risk", Include: true},
		{Key: "tag", OutputKey: "tag", Include: true},
	}
	candidates := gjson.Parse(rows).Array()

	tests := []struct {
		name    string
		filters []Filter
		want    []bool
	}{
		{
			name: "no filters",
			want: []bool{true, true, true, true},
		},
		{
			name:    "by output key",
			filters: []Filter{{Key: "risk", Operand: ">", Target: "0"}},
			want:    []bool{false, true, true, false},
		},
		{
			name:    "by attr key",
			filters: []Filter{{Key: "score", Operand: "=", Target: "0"}},
			want:    []bool{true, false, false, false},
		},
		{
			name:    "by a path outside the attrs",
			filters: []Filter{{Key: "verdict", Operand: "@", Target: "malicious"}},
			want:    []bool{false, true, true, false},
		},
		{
			name:    "missing and null values fail",
			filters: []Filter{{Key: "tag", Operand: "=", Target: "news", Negate: true}},
			want:    []bool{false, false, false, false},
		},
		{
			name:    "single detection unwraps to a string",
			filters: []Filter{{Key: "detections", Operand: "=", Target: "phishing"}},
			want:    []bool{false, true, false, false},
		},
		{
			name: "all filters must pass",
			filters: []Filter{
				{Key: "url", Operand: "^", Target: "https"},
				{Key: "risk", Operand: ">=", Target: "0"},
			},
			want: []bool{true, false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, c := range candidates {
				assert.Equal(t, tt.want[i], applyFilters(c, attrList, tt.filters), "row %d", i)
			}
		})
	}
}

func TestFilterDataset(t *testing.T) {
	attrList := attrs.AttrList{
		{Key: "url", OutputKey: "url", Include: true},
		{Key: "score", OutputKey: "score", Include: true},
		{Key: "verdict", OutputKey: "verdict", Include: false},
	}

	tests := []struct {
		name     string
		spec     string
		wantURLs []string
	}{
		{
			name:     "no filters",
			wantURLs: []string{"https://example.com", "http://examp1e.com", "https://blog.example.org", "https://unknown.test"},
		},
		{
			name:     "risky",
			spec:     "score>0",
			wantURLs: []string{"http://examp1e.com", "https://blog.example.org"},
		},
		{
			name:     "excluded attrs still filter",
			spec:     "verdict=Safe",
			wantURLs: []string{"https://example.com"},
		},
		{
			name: "no matches",
			spec: "url=https://nowhere.test",
		},
		{
			name:     "several filters",
			spec:     "url^https,score!=-1,url@blog",
			wantURLs: []string{"https://blog.example.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDataset(gjson.Parse(rows), attrList, tt.spec)
			assert.Len(t, got, len(tt.wantURLs))
			for i, want := range tt.wantURLs {
				assert.Equal(t, want, got[i]["url"])
				assert.Contains(t, got[i], "verdict", "excluded attrs are kept for sorting")
			}
		})
	}
}
