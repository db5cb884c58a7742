package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/fastq-fetch/internal/acquire"
	"github.com/pdiddy/fastq-fetch/internal/catalog"
	"github.com/pdiddy/fastq-fetch/internal/ena"
	"github.com/pdiddy/fastq-fetch/internal/httputil"
	"github.com/pdiddy/fastq-fetch/internal/logging"
	"github.com/pdiddy/fastq-fetch/internal/manifest"
	"github.com/pdiddy/fastq-fetch/pkg/types"
)

func init() {
	rootCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default: none)")
	rootCmd.Flags().String("user-agent", "", "User-Agent header (default fastq-fetch/<version>)")
	rootCmd.Flags().String("search-url", "", "ENA Portal search endpoint (default: public API)")
	rootCmd.Flags().String("manifest", "", "write a YAML report of the run to this file")
	rootCmd.Flags().String("catalog", "", "record the run in this SQLite database")

	mustBind("timeout", rootCmd.Flags().Lookup("timeout"))
	mustBind("user_agent", rootCmd.Flags().Lookup("user-agent"))
	mustBind("search_url", rootCmd.Flags().Lookup("search-url"))
	mustBind("manifest", rootCmd.Flags().Lookup("manifest"))
	mustBind("catalog", rootCmd.Flags().Lookup("catalog"))
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig reads the fetch settings from flags, environment, and config file.
func loadConfig() types.FetchConfig {
	ua := viper.GetString("user_agent")
	if ua == "" {
		ua = "fastq-fetch/" + version
	}
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: ua,
		},
		SearchURL:    viper.GetString("search_url"),
		ManifestPath: viper.GetString("manifest"),
		CatalogPath:  viper.GetString("catalog"),
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	accession := types.Accession(args[0])
	outputDir, err := filepath.Abs(args[1])
	if err != nil {
		return goerr.Wrap(err, "resolving output directory", goerr.V("dir", args[1]))
	}

	logger, err := logging.Config{
		Level: viper.GetString("log_level"),
		JSON:  viper.GetBool("log_json"),
	}.New(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	ctx := ctxlog.With(cmd.Context(), logger)

	cfg := loadConfig()
	client := httputil.NewClient(cfg.HTTPConfig)
	runner := acquire.NewRunner(
		ena.NewClient(client, cfg.SearchURL),
		acquire.NewFetcher(client, osfs.New("/")),
		cmd.OutOrStdout(),
	)

	report, runErr := runner.Run(ctx, accession, outputDir)
	if err := saveReport(ctx, cfg, report); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		logger.Error("fetch aborted", slog.String("accession", string(accession)), slog.Any("error", runErr))
	}
	return runErr
}

// saveReport writes the optional manifest and catalog entries for report.
func saveReport(ctx context.Context, cfg types.FetchConfig, report types.RunReport) error {
	if cfg.ManifestPath != "" {
		if err := manifest.Write(cfg.ManifestPath, report); err != nil {
			return err
		}
	}
	if cfg.CatalogPath == "" {
		return nil
	}

	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_, err = store.Record(ctx, report)
	return err
}
