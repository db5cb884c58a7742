// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fastq-fetch/internal/ena"
	"github.com/pdiddy/fastq-fetch/pkg/types"
)

// stubResolver returns fixed URLs or a fixed error.
type stubResolver struct {
	urls  []string
	err   error
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, _ types.Accession) ([]string, error) {
	s.calls++
	return s.urls, s.err
}

// newFileServer serves fastq bodies by path; paths listed in failing return
// the given status.
func newFileServer(t *testing.T, failing map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, ok := failing[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, "content of %s", r.URL.Path)
	}))
}

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestRunDownloadsEveryLocation(t *testing.T) {
	ts := newFileServer(t, nil)
	defer ts.Close()

	fs := memfs.New()
	resolver := &stubResolver{urls: []string{ts.URL + "/SRR1_1.fastq.gz", ts.URL + "/SRR1_2.fastq.gz"}}
	var out bytes.Buffer
	r := NewRunner(resolver, NewFetcher(ts.Client(), fs), &out)
	r.now = fixedClock()

	report, err := r.Run(context.Background(), "SRR1", "/out")
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, types.ResolveFound, report.Resolve)
	assert.Equal(t, types.Accession("SRR1"), report.Accession)
	assert.Equal(t, "/out", report.OutputDir)
	require.Len(t, report.Files, 2)
	assert.Equal(t, 2, report.Downloaded())
	assert.False(t, report.HasFailures())
	assert.Equal(t, fixedClock()(), report.StartedAt)
	assert.Equal(t, fixedClock()(), report.FinishedAt)

	for _, name := range []string{"SRR1_1.fastq.gz", "SRR1_2.fastq.gz"} {
		got, err := util.ReadFile(fs, "/out/"+name)
		require.NoError(t, err)
		assert.Equal(t, "content of /"+name, string(got))
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"Downloading " + ts.URL + "/SRR1_1.fastq.gz to /out/SRR1_1.fastq.gz",
		"Downloading " + ts.URL + "/SRR1_2.fastq.gz to /out/SRR1_2.fastq.gz",
		"Download completed.",
	}, lines)
}

func TestRunContinuesPastFailedDownload(t *testing.T) {
	ts := newFileServer(t, map[string]int{"/bad.fastq.gz": http.StatusInternalServerError})
	defer ts.Close()

	fs := memfs.New()
	resolver := &stubResolver{urls: []string{ts.URL + "/bad.fastq.gz", ts.URL + "/good.fastq.gz"}}
	var out bytes.Buffer
	r := NewRunner(resolver, NewFetcher(ts.Client(), fs), &out)

	report, err := r.Run(context.Background(), "SRR2", "/out")
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.Equal(t, types.FetchFailed, report.Files[0].Status)
	assert.Equal(t, types.FetchDownloaded, report.Files[1].Status)
	assert.Equal(t, 1, report.Failed())
	assert.True(t, report.HasFailures())

	got, err := util.ReadFile(fs, "/out/good.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "content of /good.fastq.gz", string(got))

	assert.Contains(t, out.String(), "Failed to download "+ts.URL+"/bad.fastq.gz\n")
	assert.True(t, strings.HasSuffix(out.String(), "Download completed.\n"))
}

func TestRunSkipsDotSegmentLocation(t *testing.T) {
	var requested []string
	client := stubClient(func(r *http.Request) (*http.Response, error) {
		requested = append(requested, r.URL.Path)
		return textResponse(r, http.StatusOK, "good reads"), nil
	})
	fs := memfs.New()
	resolver := &stubResolver{urls: []string{
		"example.org/vol1/%2E%2E",
		"example.org/vol1/good.fastq.gz",
	}}
	var out bytes.Buffer
	r := NewRunner(resolver, NewFetcher(client, fs), &out)

	report, err := r.Run(context.Background(), "SRR5", "/out")
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.Equal(t, types.FetchFailed, report.Files[0].Status)
	assert.Empty(t, report.Files[0].Path)
	assert.Equal(t, types.FetchDownloaded, report.Files[1].Status)
	assert.Equal(t, "/out/good.fastq.gz", report.Files[1].Path)
	assert.Equal(t, []string{"/vol1/good.fastq.gz"}, requested)

	got, err := util.ReadFile(fs, "/out/good.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "good reads", string(got))

	entries, err := fs.ReadDir("/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Contains(t, out.String(), "Failed to download https://example.org/vol1/%2E%2E\n")
	assert.True(t, strings.HasSuffix(out.String(), "Download completed.\n"))
}

func TestRunLogsThroughContextLogger(t *testing.T) {
	ts := newFileServer(t, map[string]int{"/bad.fastq.gz": http.StatusNotFound})
	defer ts.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.With(context.Background(), logger)

	resolver := &stubResolver{urls: []string{ts.URL + "/bad.fastq.gz", ts.URL + "/good.fastq.gz"}}
	var out bytes.Buffer
	r := NewRunner(resolver, NewFetcher(ts.Client(), memfs.New()), &out)

	_, err := r.Run(ctx, "SRR6", "/out")
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "download refused")
	assert.Contains(t, logs.String(), "download failed")
	assert.Contains(t, logs.String(), "msg=downloaded")
	assert.Contains(t, logs.String(), "url="+ts.URL+"/good.fastq.gz")
	assert.NotContains(t, out.String(), "download refused")
}

func TestRunSearchFailure(t *testing.T) {
	fs := memfs.New()
	resolver := &stubResolver{err: goerr.Wrap(ena.ErrSearchFailed, "ENA search", goerr.V("status", 404))}
	var out bytes.Buffer
	r := NewRunner(resolver, NewFetcher(http.DefaultClient, fs), &out)

	report, err := r.Run(context.Background(), "SRR000000", "/out")
	require.NoError(t, err)

	assert.Equal(t, types.ResolveSearchFailed, report.Resolve)
	assert.Empty(t, report.Files)
	assert.Equal(t, "Failed to fetch data for run accession: SRR000000\n", out.String())

	_, statErr := fs.Stat("/out")
	assert.True(t, os.IsNotExist(statErr), "output directory should not be created")
}

func TestRunNoFiles(t *testing.T) {
	tests := []struct {
		name     string
		resolver *stubResolver
	}{
		{"sentinel", &stubResolver{err: goerr.Wrap(ena.ErrNoFiles, "ENA search")}},
		{"empty without error", &stubResolver{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := NewRunner(tt.resolver, NewFetcher(http.DefaultClient, memfs.New()), &out)

			report, err := r.Run(context.Background(), "SRR9", "/out")
			require.NoError(t, err)
			assert.Equal(t, types.ResolveNoFiles, report.Resolve)
			assert.Equal(t, "No FASTQ files found for run accession: SRR9\n", out.String())
		})
	}
}

func TestRunResolverTransportError(t *testing.T) {
	boom := errors.New("dns failure")
	var out bytes.Buffer
	r := NewRunner(&stubResolver{err: boom}, NewFetcher(http.DefaultClient, memfs.New()), &out)

	_, err := r.Run(context.Background(), "SRR3", "/out")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.String())
}

func TestRunStopsOnTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	client := stubClient(func(r *http.Request) (*http.Response, error) {
		if strings.HasSuffix(r.URL.Path, "/first.fastq.gz") {
			return textResponse(r, http.StatusOK, "ok"), nil
		}
		return nil, boom
	})
	resolver := &stubResolver{urls: []string{
		"example.org/first.fastq.gz",
		"example.org/second.fastq.gz",
		"example.org/third.fastq.gz",
	}}
	var out bytes.Buffer
	r := NewRunner(resolver, NewFetcher(client, memfs.New()), &out)

	report, err := r.Run(context.Background(), "SRR4", "/out")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.Len(t, report.Files, 2)
	assert.Equal(t, types.FetchDownloaded, report.Files[0].Status)
	assert.NotContains(t, out.String(), "third.fastq.gz")
	assert.NotContains(t, out.String(), "Download completed.")
}
