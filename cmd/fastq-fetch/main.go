// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fastq-fetch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fastq-fetch/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd downloads the FASTQ files of one run accession.
var rootCmd = &cobra.Command{
	Use:   "fastq-fetch <run_accession> <output_dir>",
	Short: "Download FASTQ files from ENA using a run accession",
	Long: `fastq-fetch looks up a sequencing run accession in the ENA Portal search
API, collects the FASTQ locations listed for the run, and downloads each file
into output_dir (created if missing). Files are fetched one at a time; a failed
download is reported and the remaining files are still attempted.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runFetch,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./fastq-fetch.yaml or ~/.config/fastq-fetch/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")

	mustBind("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBind("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fastq-fetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fastq-fetch"))
		}
	}

	viper.SetEnvPrefix("FASTQ_FETCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
