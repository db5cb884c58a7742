// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ena

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ParseFileLocations reads a tab-separated search response with a header row
// and returns every location listed in the fastq_ftp column. Columns are
// matched by header name, so their order does not matter. Each non-empty cell
// is split on ';'. A missing column, empty cells, or zero data rows produce an
// empty result without error.
func ParseFileLocations(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "reading TSV header")
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == FieldFASTQ {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil
	}

	var locations []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "reading TSV row", goerr.V("offset", cr.InputOffset()))
		}
		if col >= len(rec) || rec[col] == "" {
			continue
		}
		for _, loc := range strings.Split(rec[col], ";") {
			if loc = strings.TrimSpace(loc); loc != "" {
				locations = append(locations, loc)
			}
		}
	}
	return locations, nil
}
