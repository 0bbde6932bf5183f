package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/vuln-list-stats/cve"
	"github.com/aquasecurity/vuln-list-stats/cvss"
	"github.com/aquasecurity/vuln-list-stats/cwe"
	"github.com/aquasecurity/vuln-list-stats/report"
	"github.com/aquasecurity/vuln-list-stats/stats"
)

const (
	cnaRecord = `{
	  "cveMetadata": {"cveId": "CVE-2024-0001"},
	  "containers": {
	    "cna": {
	      "metrics": [{"cvssV3_1": {"baseSeverity": "HIGH", "baseScore": 7.5, "vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N"}}],
	      "problemTypes": [{"descriptions": [{"cweId": "CWE-79"}]}]
	    }
	  }
	}`
	adpRecord = `{
	  "cveMetadata": {"cveId": "CVE-2016-0002"},
	  "containers": {
	    "cna": {"metrics": [{"cvssV2_0": {"baseScore": 5.0, "vectorString": "AV:N/AC:L/Au:N/C:P/I:N/A:N"}}]},
	    "adp": [{"problemTypes": [{"descriptions": [{"cweId": "79"}]}]}]
	  }
	}`
)

func analyze(t *testing.T) stats.Result {
	t.Helper()
	var docs []cve.Document
	for id, body := range map[string]string{"CVE-2024-0001": cnaRecord, "CVE-2016-0002": adpRecord} {
		var v any
		require.NoError(t, json.Unmarshal([]byte(body), &v))
		docs = append(docs, cve.Document{ID: id, Body: v})
	}
	docs = append(docs, cve.Document{ID: "array-doc", Body: []any{}})

	result, err := stats.NewEngine(stats.WithWorkers(2)).AnalyzeDocuments(context.Background(), docs)
	require.NoError(t, err)
	return result
}

func TestNewSummary(t *testing.T) {
	s := report.NewSummary(analyze(t), report.WithRevision("abc123"))

	assert.Equal(t, "abc123", s.Revision)
	assert.Equal(t, stats.Totals{
		Documents:      2,
		WithMetrics:    2,
		V2:             1,
		V3:             1,
		WithWeaknesses: 2,
	}, s.Totals)
	assert.Equal(t, report.Coverage{Metrics: 100, V2: 50, V3: 50, Weaknesses: 100}, s.Coverage)

	require.Len(t, s.Metrics, len(cvss.AllMetrics))
	assert.Equal(t, report.MetricTable{
		Metric: cvss.Confidentiality,
		Total:  2,
		Entries: []stats.Entry{
			{Value: "HIGH", Count: 1, Percent: 50},
			{Value: cvss.Undetermined, Count: 1, Percent: 50},
		},
	}, s.Metrics[0])

	assert.Equal(t, []stats.Entry{
		{Value: "High", Count: 1, Percent: 50},
		{Value: "Medium", Count: 1, Percent: 50},
	}, s.Severity)
	assert.Equal(t, []stats.Entry{{Value: "CWE-79", Count: 2, Percent: 100}}, s.Weaknesses.Frequency)
	assert.Equal(t, []stats.Entry{
		{Value: "adp only", Count: 1, Percent: 50},
		{Value: "cna only", Count: 1, Percent: 50},
	}, s.Weaknesses.Locations)
	assert.Equal(t, 1, s.Weaknesses.Diversity.Unique)

	assert.Nil(t, s.Weaknesses.Names)

	require.Len(t, s.Errors, 1)
	assert.Equal(t, "array-doc", s.Errors[0].ID)
	assert.Contains(t, s.Errors[0].Error, "document is not a JSON object")
}

func TestNewSummary_Empty(t *testing.T) {
	s := report.NewSummary(stats.Result{})
	assert.Zero(t, s.Totals)
	assert.Zero(t, s.Coverage)
	assert.Len(t, s.Metrics, len(cvss.AllMetrics))
	assert.Empty(t, s.Errors)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []report.Format
		wantErr string
	}{
		{
			name:  "single",
			input: "json",
			want:  []report.Format{report.FormatJSON},
		},
		{
			name:  "list with spaces and duplicates",
			input: "CSV, yaml,csv,",
			want:  []report.Format{report.FormatCSV, report.FormatYAML},
		},
		{
			name:  "empty",
			input: "",
		},
		{
			name:    "unknown",
			input:   "json,xml",
			wantErr: "unknown output format: xml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.ParseFormats(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := report.NewSummary(analyze(t))
	err := report.Write(fs, "/out", s, []report.Format{report.FormatJSON, report.FormatYAML, report.FormatCSV, report.FormatText})
	require.NoError(t, err)

	b, err := afero.ReadFile(fs, "/out/summary.json")
	require.NoError(t, err)
	var got struct {
		Totals map[string]int `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, 2, got.Totals["documents"])
	assert.Equal(t, 1, got.Totals["cvss_v2"])

	b, err = afero.ReadFile(fs, "/out/summary.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(b), "documents: 2")

	csvFiles := []struct {
		name string
		want string
	}{
		{
			name: "cwe_frequency.csv",
			want: "cwe_id,count,percent\nCWE-79,2,100.00\n",
		},
		{
			name: "cwe_locations.csv",
			want: "location,count,percent\nadp only,1,50.00\ncna only,1,50.00\n",
		},
		{
			name: "severity.csv",
			want: "severity,count,percent\nHigh,1,50.00\nMedium,1,50.00\n",
		},
	}
	for _, f := range csvFiles {
		b, err = afero.ReadFile(fs, "/out/"+f.name)
		require.NoError(t, err, f.name)
		assert.Equal(t, f.want, string(b), f.name)
	}

	b, err = afero.ReadFile(fs, "/out/metrics.csv")
	require.NoError(t, err)
	assert.Contains(t, string(b), "metric,value,count,percent\nConfidentiality,HIGH,1,50.00\nConfidentiality,N/A,1,50.00\n")
	assert.Contains(t, string(b), "Authentication,N,1,100.00\n")

	b, err = afero.ReadFile(fs, "/out/errors.csv")
	require.NoError(t, err)
	assert.Contains(t, string(b), "array-doc,")

	ok, err := afero.Exists(fs, "/out/summary.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWrite_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := report.Write(fs, "/out", report.NewSummary(stats.Result{}), []report.Format{report.FormatJSON})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mkdir error")
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Print(&buf, report.NewSummary(analyze(t), report.WithRevision("abc123"))))

	out := buf.String()
	for _, want := range []string{
		"Corpus revision: abc123",
		"Documents with CVSS metrics: 2 (100.0%)",
		"Documents with CVSS v2.0 metrics: 1 (50.0%)",
		"Confidentiality:",
		"  Total entries: 2",
		"CWE-79  2  (100.0%)",
		"Unique CWE IDs: 1",
		"array-doc: decode error",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWrite_Catalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := report.NewSummary(analyze(t), report.WithCatalog(cwe.Catalog{
		"CWE-79": "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')",
		"CWE-20": "Improper Input Validation",
	}))
	assert.Equal(t, map[string]string{
		"CWE-79": "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')",
	}, s.Weaknesses.Names)

	require.NoError(t, report.Write(fs, "/out", s, []report.Format{report.FormatCSV}))
	b, err := afero.ReadFile(fs, "/out/cwe_frequency.csv")
	require.NoError(t, err)
	assert.Equal(t, "cwe_id,name,count,percent\nCWE-79,Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting'),2,100.00\n", string(b))

	var buf bytes.Buffer
	require.NoError(t, report.Print(&buf, s))
	assert.Contains(t, buf.String(), "  CWE-79: Improper Neutralization")
}
