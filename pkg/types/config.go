// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every outbound request.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "fastq-fetch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for one accession run.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// SearchURL is the ENA Portal search endpoint. Empty selects the public one.
	SearchURL string `json:"search_url,omitempty" yaml:"search_url,omitempty"`

	// ManifestPath, when set, receives a YAML copy of the RunReport.
	ManifestPath string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// CatalogPath, when set, is the SQLite database that records every fetch.
	CatalogPath string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
}
