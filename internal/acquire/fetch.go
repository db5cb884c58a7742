// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/pdiddy/fastq-fetch/internal/httputil"
	"github.com/pdiddy/fastq-fetch/pkg/types"
)

const (
	// chunkSize is the read size used when streaming a body to disk.
	chunkSize = 8192

	// sniffLen is how much of a body is kept for content type detection.
	sniffLen = 3072
)

// Fetcher streams remote files into a directory on FS.
type Fetcher struct {
	Client *http.Client
	FS     billy.Filesystem
}

// NewFetcher returns a Fetcher writing through fs.
func NewFetcher(client *http.Client, fs billy.Filesystem) *Fetcher {
	return &Fetcher{Client: client, FS: fs}
}

// Destination returns the normalized URL for rawURL and the local path it is
// written to under outputDir. The path is "" when the URL names no file.
func (f *Fetcher) Destination(rawURL, outputDir string) (normalized, dest string) {
	normalized = NormalizeURL(rawURL)
	name := FileName(normalized)
	if name == "" {
		return normalized, ""
	}
	return normalized, f.FS.Join(outputDir, name)
}

// Fetch downloads rawURL into outputDir, creating the directory if needed.
// An existing file with the same name is overwritten.
//
// Failures that concern only this URL (non-OK status, unsupported scheme,
// unusable URL) are reported in the returned record with a nil error so a
// batch can move on. Transport and filesystem errors are returned.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, outputDir string) (types.FileRecord, error) {
	if err := f.FS.MkdirAll(outputDir, 0o755); err != nil {
		return types.FileRecord{SourceURL: rawURL}, goerr.Wrap(err, "creating output directory", goerr.V("dir", outputDir))
	}

	normalized, dest := f.Destination(rawURL, outputDir)
	rec := types.FileRecord{SourceURL: rawURL, URL: normalized, Path: dest}

	if dest == "" {
		return failed(rec, "URL has no file name"), nil
	}
	if strings.HasPrefix(normalized, prefixFTP) {
		return failed(rec, "ftp:// is not supported by the HTTP client"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalized, nil)
	if err != nil {
		return failed(rec, err.Error()), nil
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return rec, goerr.Wrap(err, "download request", goerr.V("url", normalized))
	}
	defer resp.Body.Close()

	rec.StatusCode = resp.StatusCode
	if err := httputil.CheckStatus(resp); err != nil {
		ctxlog.From(ctx).Debug("download refused", slog.String("url", normalized), slog.Int("status", resp.StatusCode))
		return failed(rec, err.Error()), nil
	}

	n, contentType, err := f.write(dest, resp.Body)
	rec.Bytes = n
	if err != nil {
		return rec, goerr.Wrap(err, "writing download", goerr.V("url", normalized), goerr.V("path", dest))
	}

	rec.Status = types.FetchDownloaded
	rec.ContentType = contentType
	ctxlog.From(ctx).Debug("downloaded",
		slog.String("url", normalized),
		slog.String("path", dest),
		slog.Int64("bytes", n),
		slog.String("content_type", contentType))
	return rec, nil
}

// write streams body into dest in chunkSize reads and returns the byte count
// and the sniffed content type.
func (f *Fetcher) write(dest string, body io.Reader) (int64, string, error) {
	file, err := f.FS.Create(dest)
	if err != nil {
		return 0, "", err
	}

	head := &headBuffer{limit: sniffLen}
	// Wrapping hides ReadFrom on the file so CopyBuffer honours the chunk size.
	n, copyErr := io.CopyBuffer(struct{ io.Writer }{file}, io.TeeReader(body, head), make([]byte, chunkSize))
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return n, "", err
	}
	return n, mimetype.Detect(head.Bytes()).String(), nil
}

func failed(rec types.FileRecord, msg string) types.FileRecord {
	rec.Status = types.FetchFailed
	rec.Error = msg
	return rec
}

// headBuffer keeps the first limit bytes written to it and discards the rest.
type headBuffer struct {
	bytes.Buffer
	limit int
}

func (h *headBuffer) Write(p []byte) (int, error) {
	if room := h.limit - h.Len(); room > 0 {
		if len(p) > room {
			h.Buffer.Write(p[:room])
		} else {
			h.Buffer.Write(p)
		}
	}
	return len(p), nil
}
