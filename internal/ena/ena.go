// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ena resolves run accessions to FASTQ download locations through the
// ENA Portal search API.
package ena

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/pdiddy/fastq-fetch/internal/httputil"
	"github.com/pdiddy/fastq-fetch/pkg/types"
)

// searchBase is the ENA Portal search endpoint. Declared as a var so tests can
// substitute an httptest server.
var searchBase = "https://www.ebi.ac.uk/ena/portal/api/search"

// FieldFASTQ is the search field listing a run's FASTQ locations.
const FieldFASTQ = "fastq_ftp"

var (
	// ErrSearchFailed marks a search response with a non-OK status.
	ErrSearchFailed = errors.New("search request failed")

	// ErrNoFiles marks a successful search that listed no FASTQ locations.
	ErrNoFiles = errors.New("no FASTQ files found")
)

// Client queries the read_run result of the ENA Portal API.
type Client struct {
	HTTP *http.Client

	// BaseURL overrides the search endpoint when non-empty.
	BaseURL string
}

// NewClient returns a Client using httpClient against baseURL. An empty baseURL
// selects the public endpoint.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{HTTP: httpClient, BaseURL: baseURL}
}

// SearchURL returns the full request URL for accession.
func (c *Client) SearchURL(accession types.Accession) string {
	base := c.BaseURL
	if base == "" {
		base = searchBase
	}
	params := url.Values{
		"result": {"read_run"},
		"query":  {"accession=" + string(accession)},
		"fields": {FieldFASTQ},
		"format": {"tsv"},
		"limit":  {"0"},
	}
	return base + "?" + params.Encode()
}

// Resolve returns the FASTQ locations ENA lists for accession, in response
// order. A non-OK status yields an error wrapping ErrSearchFailed; a response
// with no locations yields an error wrapping ErrNoFiles. Transport and read
// errors are returned as they occur.
func (c *Client) Resolve(ctx context.Context, accession types.Accession) ([]string, error) {
	logger := ctxlog.From(ctx)
	reqURL := c.SearchURL(accession)
	logger.Debug("searching ENA", slog.String("accession", string(accession)), slog.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "creating search request", goerr.V("accession", accession))
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "ENA search request", goerr.V("accession", accession))
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrSearchFailed, err), "ENA search",
			goerr.V("accession", accession), goerr.V("status", resp.StatusCode))
	}

	urls, err := ParseFileLocations(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "parsing ENA search response", goerr.V("accession", accession))
	}
	if len(urls) == 0 {
		return nil, goerr.Wrap(ErrNoFiles, "ENA search", goerr.V("accession", accession))
	}

	logger.Debug("resolved FASTQ locations", slog.String("accession", string(accession)), slog.Int("count", len(urls)))
	return urls, nil
}
