// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"net/url"
	"path"
	"strings"
)

// Scheme prefixes accepted as-is by NormalizeURL.
const (
	prefixFTP   = "ftp://"
	prefixHTTPS = "https://"
)

// NormalizeURL returns raw unchanged when it starts with "ftp://" or
// "https://" and prefixes it with "https://" otherwise. ENA lists FASTQ
// locations without a scheme (e.g. "ftp.sra.ebi.ac.uk/vol1/...").
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, prefixFTP) || strings.HasPrefix(raw, prefixHTTPS) {
		return raw
	}
	return prefixHTTPS + raw
}

// FileName returns the final path segment of rawURL, or "" when the URL names
// no file: an empty path, a trailing slash, or a dot segment. The path is
// percent-decoded first, so "%2E%2E" counts as "..".
func FileName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	switch name := path.Base(p); name {
	case ".", "..", "/":
		return ""
	default:
		return name
	}
}
