// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fastq-fetch/internal/catalog"
	"github.com/pdiddy/fastq-fetch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history <run_accession>",
	Short: "List recorded fetch runs of an accession",
	Long: `History reads the SQLite catalog written by --catalog and lists every
recorded run of the accession, oldest first, with the number of files
downloaded and failed in each run.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runHistory,
}

func init() {
	historyCmd.Flags().String("catalog", "", "SQLite catalog to read (default: catalog from config)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	accession := types.Accession(args[0])

	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = viper.GetString("catalog")
	}
	if path == "" {
		return goerr.New("catalog required: pass --catalog or set catalog in the config file")
	}
	if _, err := os.Stat(path); err != nil {
		return goerr.Wrap(err, "opening catalog", goerr.V("path", path))
	}

	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListByAccession(cmd.Context(), accession)
	if err != nil {
		return err
	}
	formatHistory(cmd.OutOrStdout(), accession, runs)
	return nil
}

func formatHistory(w io.Writer, accession types.Accession, runs []types.RunReport) {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded for %s.\n", accession)
		return
	}

	fmt.Fprintf(w, "%-20s  %-13s  %-10s  %-6s  %s\n",
		"Started", "Resolve", "Downloaded", "Failed", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, r := range runs {
		fmt.Fprintf(w, "%-20s  %-13s  %-10d  %-6d  %s\n",
			r.StartedAt.UTC().Format(time.RFC3339), r.Resolve, r.Downloaded(), r.Failed(), r.OutputDir)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}
