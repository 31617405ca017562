// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package vladhog is a client for the Vladhog URL reputation service.
//
// Every lookup consults the client's cache first. On a miss the service is
// queried, the response is stored, and the whole cache is written back to its
// store. Verdicts from CheckURL and PerformDynamicAnalysis are mapped to
// scores:
//
//	-1   unknown, or the analysis did not complete
//	 0   safe
//	 0.5 nothing malicious detected
//	 1   might be malicious, or a list of detections
//
// A minimal client:
//
//	c := vladhog.New(ctx, vladhog.Options{
//		APIKey:    os.Getenv("VHSEC_API_KEY"),
//		CacheFile: "/var/cache/vhsec/cache.json",
//	})
//	score, err := c.CheckURL(ctx, "https://example.com")
//
// Cache read and write failures are logged and passed to
// Options.OnCacheError; they never fail a lookup. Transport and decoding
// failures are returned as *RequestError values matching ErrTransport or
// ErrDecode.
package vladhog
