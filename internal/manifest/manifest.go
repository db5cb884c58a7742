// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest saves the report of an accession run as YAML so the
// outcome of every download can be inspected after the process exits.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fastq-fetch/pkg/types"
)

// Write saves report to path, creating parent directories as needed.
// An existing file is replaced.
func Write(path string, report types.RunReport) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return goerr.Wrap(err, "marshaling manifest")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "creating manifest directory", goerr.V("dir", dir))
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "writing manifest", goerr.V("path", path))
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*types.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "reading manifest", goerr.V("path", path))
	}
	var report types.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, goerr.Wrap(err, "parsing manifest", goerr.V("path", path))
	}
	return &report, nil
}
