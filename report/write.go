package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/stats"
	"github.com/aquasecurity/vuln-list-stats/utils"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

var allFormats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatText}

// ParseFormats parses a comma separated list such as "json,csv".
func ParseFormats(s string) ([]Format, error) {
	var fs []Format
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		format := Format(f)
		if !slices.Contains(allFormats, format) {
			return nil, xerrors.Errorf("unknown output format: %s", f)
		}
		if !slices.Contains(fs, format) {
			fs = append(fs, format)
		}
	}
	return fs, nil
}

// Write saves s under dir in each of the requested formats.
func Write(fs afero.Fs, dir string, s Summary, formats []Format) error {
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return xerrors.Errorf("mkdir error: %w", err)
	}

	appFs := utils.NewFs(fs)
	for _, f := range formats {
		var err error
		switch f {
		case FormatJSON:
			err = appFs.WriteJSON(filepath.Join(dir, "summary.json"), s)
		case FormatYAML:
			err = appFs.WriteYAML(filepath.Join(dir, "summary.yaml"), s)
		case FormatCSV:
			err = writeCSV(fs, dir, s)
		case FormatText:
			err = writeText(fs, filepath.Join(dir, "summary.txt"), s)
		default:
			err = xerrors.Errorf("unknown output format: %s", f)
		}
		if err != nil {
			return xerrors.Errorf("%s report error: %w", f, err)
		}
	}
	return nil
}

func writeCSV(fs afero.Fs, dir string, s Summary) error {
	metrics := [][]string{{"metric", "value", "count", "percent"}}
	for _, table := range s.Metrics {
		for _, e := range table.Entries {
			metrics = append(metrics, []string{string(table.Metric), e.Value, strconv.Itoa(e.Count), formatPercent(e.Percent)})
		}
	}

	tables := []struct {
		name    string
		records [][]string
	}{
		{name: "metrics.csv", records: metrics},
		{name: "severity.csv", records: entryRecords("severity", s.Severity)},
		{name: "cwe_frequency.csv", records: weaknessRecords(s.Weaknesses)},
		{name: "cwe_locations.csv", records: entryRecords("location", s.Weaknesses.Locations)},
		{name: "errors.csv", records: errorRecords(s.Errors)},
	}
	for _, t := range tables {
		if err := saveCSV(fs, filepath.Join(dir, t.name), t.records); err != nil {
			return xerrors.Errorf("failed to save %s: %w", t.name, err)
		}
	}
	return nil
}

func entryRecords(header string, entries []stats.Entry) [][]string {
	records := [][]string{{header, "count", "percent"}}
	for _, e := range entries {
		records = append(records, []string{e.Value, strconv.Itoa(e.Count), formatPercent(e.Percent)})
	}
	return records
}

func weaknessRecords(w WeaknessSummary) [][]string {
	if w.Names == nil {
		return entryRecords("cwe_id", w.Frequency)
	}
	records := [][]string{{"cwe_id", "name", "count", "percent"}}
	for _, e := range w.Frequency {
		records = append(records, []string{e.Value, w.Names[e.Value], strconv.Itoa(e.Count), formatPercent(e.Percent)})
	}
	return records
}

func errorRecords(errs []ErrorEntry) [][]string {
	records := [][]string{{"id", "error"}}
	for _, e := range errs {
		records = append(records, []string{e.ID, e.Error})
	}
	return records
}

func saveCSV(fs afero.Fs, path string, records [][]string) error {
	f, err := fs.Create(path)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	if err = csv.NewWriter(f).WriteAll(records); err != nil {
		return xerrors.Errorf("csv write error: %w", err)
	}
	return nil
}

func writeText(fs afero.Fs, path string, s Summary) error {
	f, err := fs.Create(path)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()
	return Print(f, s)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f", p)
}
