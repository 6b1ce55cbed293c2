// Package ingest loads endpoint templates and keywords from CSV files.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/qepting91/feedcards/internal/collector"
)

// Endpoint names end up as metric labels
var endpointNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,40}$`)

// LoadEndpoints reads a name,template CSV. The first row is a header.
// Rows with a bad name or a template without a placeholder are skipped.
func LoadEndpoints(path string) ([]collector.EndpointTemplate, error) {
	var templates []collector.EndpointTemplate
	err := readRows(path, func(record []string) {
		if len(record) < 2 {
			return
		}
		name := strings.TrimSpace(record[0])
		tmpl := strings.TrimSpace(record[1])
		if !endpointNameRegex.MatchString(name) {
			return
		}
		if !strings.Contains(tmpl, collector.PlaceholderEscaped) && !strings.Contains(tmpl, collector.PlaceholderRaw) {
			return
		}
		templates = append(templates, collector.EndpointTemplate{Name: name, Template: tmpl})
	})
	return templates, err
}

// LoadKeywords reads the first column of a CSV, skipping the header row.
// Keywords are lowercased and trimmed; blank cells are dropped.
func LoadKeywords(path string) ([]string, error) {
	var kws []string
	err := readRows(path, func(record []string) {
		if len(record) == 0 {
			return
		}
		if kw := strings.ToLower(strings.TrimSpace(record[0])); kw != "" {
			kws = append(kws, kw)
		}
	})
	return kws, err
}

// readRows calls fn for every data row. Malformed rows are skipped.
func readRows(path string, fn func(record []string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Wrap in BOM stripper
	r := csv.NewReader(stripBOM(f))
	r.FieldsPerRecord = -1
	r.Comment = '#'

	line := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return err
		}
		line++
		if line == 1 {
			continue // Skip header
		}
		fn(record)
	}
	return nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}
