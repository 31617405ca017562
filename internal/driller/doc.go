// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller resolves dotted attribute paths against JSON result rows so
// that --attrs can pick nested fields out of service responses.
package driller
