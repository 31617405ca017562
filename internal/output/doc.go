// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output filters, sorts and renders result rows as a table, JSON,
// YAML or the raw rows.
package output
