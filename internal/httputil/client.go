// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the search and download stages.
package httputil

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/fastq-fetch/pkg/types"
)

// NewClient returns an HTTP client configured from cfg. A zero Timeout leaves
// the client without a deadline; a non-empty UserAgent is set on every request
// that does not already carry one.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: WithUserAgent(http.DefaultTransport, cfg.UserAgent),
	}
}

// WithUserAgent wraps next so that requests without a User-Agent header get ua.
// An empty ua returns next unchanged.
func WithUserAgent(next http.RoundTripper, ua string) http.RoundTripper {
	if ua == "" {
		return next
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return &userAgentTransport{next: next, userAgent: ua}
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(r)
}

// StatusError reports a response whose status was not 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// CheckStatus returns a *StatusError unless resp carries 200 OK.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}
	return &StatusError{URL: url, StatusCode: resp.StatusCode}
}
