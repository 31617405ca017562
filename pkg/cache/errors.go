// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "errors"

var (
	// ErrKindConflict is returned by Put when the key already holds an entry of
	// a different kind. The stored entry is left untouched.
	ErrKindConflict = errors.New("cache key holds a different kind of entry")

	// ErrInvalidEntry is returned when a snapshot entry is not valid JSON.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrNoStore is returned when an operation needs a Store and none is set.
	ErrNoStore = errors.New("no cache store configured")
)
