// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package vladhog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// hit issues a GET against endpoint and decodes the body into out. The status
// code is not interpreted; it only shows up in the error when the body does
// not decode.
func (c *Client) hit(ctx context.Context, endpoint string, out any) error {
	redacted := c.redact(endpoint)
	c.logger.Debugf("GET %s", redacted)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &RequestError{Kind: ErrTransport, URL: redacted, Err: c.scrub(err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Kind: ErrTransport, URL: redacted, Err: c.scrub(err)}
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return &RequestError{Kind: ErrTransport, URL: redacted, StatusCode: resp.StatusCode, Err: err}
	}

	if err := json.Unmarshal(doc.Bytes(), out); err != nil {
		return &RequestError{Kind: ErrDecode, URL: redacted, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// queryURL builds {endpoint}{path}?key=..&url=..
func (c *Client) queryURL(path, target string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("url", target)
	return c.endpoint + path + "?" + q.Encode()
}

// redact hides the API key in a request URL.
func (c *Client) redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return c.scrubString(raw)
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// scrub rewrites err so its message does not carry the API key. net/http
// errors quote the full request URL.
func (c *Client) scrub(err error) error {
	if err == nil || c.apiKey == "" || !strings.Contains(err.Error(), c.apiKey) {
		return err
	}
	return &scrubbedError{msg: c.scrubString(err.Error()), err: err}
}

func (c *Client) scrubString(s string) string {
	if c.apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(c.apiKey), "REDACTED")
	return strings.ReplaceAll(s, c.apiKey, "REDACTED")
}

type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }
