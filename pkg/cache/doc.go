// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache holds previously fetched verdicts keyed by lookup, and the
// stores (file, memory, S3) that persist them between runs.
package cache
