// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

type segment struct {
	key   string
	index int
}

// Driller returns the value at path in doc. Paths are dotted keys with
// optional [n] indexes, e.g. "result[0]" or "similar[1].similar_to". An array
// holding a single element stands in for that element, so "items.id" reaches
// into [{"id": ...}]. A missing path returns a Result for which Exists is false.
func Driller(doc string, path string) gjson.Result {
	cur := gjson.Parse(doc)

	for _, seg := range split(path) {
		if seg.key != "" {
			if cur.IsArray() {
				arr := cur.Array()
				if len(arr) != 1 {
					return gjson.Result{}
				}
				cur = arr[0]
			}
			cur = cur.Get(gjson.Escape(seg.key))
		}

		if seg.index >= 0 {
			if !cur.IsArray() {
				return gjson.Result{}
			}
			arr := cur.Array()
			if seg.index >= len(arr) {
				return gjson.Result{}
			}
			cur = arr[seg.index]
		}

		if !cur.Exists() {
			return cur
		}
	}

	if cur.IsArray() {
		if arr := cur.Array(); len(arr) == 1 {
			return arr[0]
		}
	}

	return cur
}

// split breaks "a.b[2].c" into {a,-1} {b,2} {c,-1}.
func split(path string) []segment {
	var segs []segment
	for _, part := range strings.Split(path, ".") {
		seg := segment{key: part, index: -1}
		if open := strings.IndexByte(part, '['); open >= 0 && strings.HasSuffix(part, "]") {
			if n, err := strconv.Atoi(part[open+1 : len(part)-1]); err == nil && n >= 0 {
				seg = segment{key: part[:open], index: n}
			}
		}
		segs = append(segs, seg)
	}
	return segs
}
