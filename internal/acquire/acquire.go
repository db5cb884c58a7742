// Package acquire downloads the FASTQ files of a run accession into a local
// directory: resolve once, then fetch every location in order.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/pdiddy/fastq-fetch/internal/ena"
	"github.com/pdiddy/fastq-fetch/pkg/types"
)

// Resolver maps a run accession to its download locations.
type Resolver interface {
	Resolve(ctx context.Context, accession types.Accession) ([]string, error)
}

// Runner sequences a Resolver and a Fetcher for one accession, printing
// per-file progress to Out.
type Runner struct {
	Resolver Resolver
	Fetcher  *Fetcher
	Out      io.Writer

	// now is replaced in tests.
	now func() time.Time
}

// NewRunner returns a Runner that prints progress to out.
func NewRunner(resolver Resolver, fetcher *Fetcher, out io.Writer) *Runner {
	return &Runner{Resolver: resolver, Fetcher: fetcher, Out: out}
}

// Run resolves accession and downloads each location into outputDir, one at
// a time. A failed search or an empty result ends the run with a message and
// no error. A failed download is recorded and the next location is tried.
// Only transport and filesystem errors abort the run; the returned report
// then holds the outcomes gathered so far.
func (r *Runner) Run(ctx context.Context, accession types.Accession, outputDir string) (types.RunReport, error) {
	report := types.RunReport{
		Accession: accession,
		OutputDir: outputDir,
		StartedAt: r.clock(),
	}

	logger := ctxlog.From(ctx)
	urls, err := r.Resolver.Resolve(ctx, accession)
	switch {
	case errors.Is(err, ena.ErrSearchFailed):
		logger.Debug("search failed", slog.Any("error", err))
		fmt.Fprintf(r.Out, "Failed to fetch data for run accession: %s\n", accession)
		report.Resolve = types.ResolveSearchFailed
		report.FinishedAt = r.clock()
		return report, nil
	case errors.Is(err, ena.ErrNoFiles), err == nil && len(urls) == 0:
		fmt.Fprintf(r.Out, "No FASTQ files found for run accession: %s\n", accession)
		report.Resolve = types.ResolveNoFiles
		report.FinishedAt = r.clock()
		return report, nil
	case err != nil:
		report.FinishedAt = r.clock()
		return report, goerr.Wrap(err, "resolving accession", goerr.V("accession", accession))
	}
	report.Resolve = types.ResolveFound

	for _, u := range urls {
		normalized, dest := r.Fetcher.Destination(u, outputDir)
		fmt.Fprintf(r.Out, "Downloading %s to %s\n", normalized, dest)

		rec, err := r.Fetcher.Fetch(ctx, u, outputDir)
		report.Files = append(report.Files, rec)
		if err != nil {
			report.FinishedAt = r.clock()
			return report, goerr.Wrap(err, "fetching file", goerr.V("url", normalized))
		}
		if rec.Status == types.FetchFailed {
			logger.Debug("download failed", slog.String("url", normalized), slog.String("reason", rec.Error))
			fmt.Fprintf(r.Out, "Failed to download %s\n", normalized)
		}
	}

	fmt.Fprintln(r.Out, "Download completed.")
	report.FinishedAt = r.clock()
	return report, nil
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
