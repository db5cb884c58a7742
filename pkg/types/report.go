// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for fastq-fetch.
package types

import "time"

// Accession is a run accession as supplied by the caller (e.g. "SRR000001").
// Its structure is never validated.
type Accession string

// ResolveStatus records how the search stage ended for a run.
type ResolveStatus string

const (
	ResolveFound        ResolveStatus = "found"
	ResolveNoFiles      ResolveStatus = "no_files"
	ResolveSearchFailed ResolveStatus = "search_failed"
)

// FetchStatus records the outcome of a single file download.
type FetchStatus string

const (
	FetchDownloaded FetchStatus = "downloaded"
	FetchFailed     FetchStatus = "failed"
)

// FileRecord is the outcome of fetching one resolved URL.
type FileRecord struct {
	// SourceURL is the location exactly as the archive reported it.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// URL is the scheme-normalized location that was requested.
	URL string `json:"url" yaml:"url"`

	// Path is the local destination file.
	Path string `json:"path" yaml:"path"`

	Status FetchStatus `json:"status" yaml:"status"`

	// StatusCode is the HTTP status of the download response, if one arrived.
	StatusCode int `json:"status_code,omitempty" yaml:"status_code,omitempty"`

	// Bytes is the number of bytes written to Path.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	// ContentType is sniffed from the first bytes of the body (e.g. "application/gzip").
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Error describes why a failed fetch failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport summarizes one accession run.
type RunReport struct {
	Accession  Accession     `json:"accession" yaml:"accession"`
	OutputDir  string        `json:"output_dir" yaml:"output_dir"`
	Resolve    ResolveStatus `json:"resolve" yaml:"resolve"`
	Files      []FileRecord  `json:"files" yaml:"files"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
}

// Downloaded returns the number of files written successfully.
func (r RunReport) Downloaded() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == FetchDownloaded {
			n++
		}
	}
	return n
}

// Failed returns the number of files that could not be downloaded.
func (r RunReport) Failed() int {
	return len(r.Files) - r.Downloaded()
}

// HasFailures reports whether any file failed.
func (r RunReport) HasFailures() bool {
	return r.Failed() > 0
}
