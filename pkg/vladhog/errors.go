// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package vladhog

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures to build, send or read a request.
	ErrTransport = errors.New("vladhog transport error")

	// ErrDecode marks response bodies that are not the expected JSON.
	ErrDecode = errors.New("vladhog decode error")
)

// RequestError describes a failed lookup. URL has the API key redacted.
type RequestError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s (status %d): %v", e.Kind, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap lets errors.Is match both the kind sentinel and the cause.
func (e *RequestError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
