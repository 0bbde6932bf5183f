package report

import (
	"github.com/aquasecurity/vuln-list-stats/cvss"
	"github.com/aquasecurity/vuln-list-stats/cwe"
	"github.com/aquasecurity/vuln-list-stats/stats"
)

type options struct {
	revision string
	catalog  cwe.Catalog
}

type Option func(*options)

// WithRevision records the corpus commit the summary was computed from.
func WithRevision(revision string) Option {
	return func(opts *options) { opts.revision = revision }
}

// WithCatalog names the weakness identifiers found in the catalog.
func WithCatalog(catalog cwe.Catalog) Option {
	return func(opts *options) { opts.catalog = catalog }
}

// Summary is the serializable view of one analysis run.
type Summary struct {
	Revision   string          `json:"revision,omitempty" yaml:"revision,omitempty"`
	Totals     stats.Totals    `json:"totals" yaml:"totals"`
	Coverage   Coverage        `json:"coverage" yaml:"coverage"`
	Metrics    []MetricTable   `json:"metrics" yaml:"metrics"`
	Severity   []stats.Entry   `json:"severity" yaml:"severity"`
	Versions   []stats.Entry   `json:"versions" yaml:"versions"`
	Sources    []stats.Entry   `json:"sources" yaml:"sources"`
	Weaknesses WeaknessSummary `json:"weaknesses" yaml:"weaknesses"`
	Errors     []ErrorEntry    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Coverage holds the headline ratios in percent. V2 and V3 are shares of the
// documents with metrics, the others shares of all documents.
type Coverage struct {
	Metrics    float64 `json:"metrics" yaml:"metrics"`
	V2         float64 `json:"cvss_v2" yaml:"cvss_v2"`
	V3         float64 `json:"cvss_v3" yaml:"cvss_v3"`
	Weaknesses float64 `json:"weaknesses" yaml:"weaknesses"`
}

type MetricTable struct {
	Metric  cvss.Metric   `json:"metric" yaml:"metric"`
	Total   int           `json:"total" yaml:"total"`
	Entries []stats.Entry `json:"entries" yaml:"entries"`
}

type WeaknessSummary struct {
	Diversity stats.Diversity `json:"diversity" yaml:"diversity"`
	Locations []stats.Entry   `json:"locations" yaml:"locations"`
	Frequency []stats.Entry   `json:"frequency" yaml:"frequency"`
	// Names is only set when a catalog was supplied.
	Names map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
}

type ErrorEntry struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

func NewSummary(result stats.Result, opts ...Option) Summary {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	t := result.Tables
	if t == nil {
		t = stats.NewFrequencyTables()
	}

	s := Summary{
		Revision: o.revision,
		Totals:   t.Totals,
		Coverage: Coverage{
			Metrics:    percent(t.Totals.WithMetrics, t.Totals.Documents),
			V2:         percent(t.Totals.V2, t.Totals.WithMetrics),
			V3:         percent(t.Totals.V3, t.Totals.WithMetrics),
			Weaknesses: percent(t.Totals.WithWeaknesses, t.Totals.Documents),
		},
		Severity: t.SeverityCounter().Sorted(),
		Versions: t.VersionCounter().Sorted(),
		Sources:  t.SourceCounter().Sorted(),
		Weaknesses: WeaknessSummary{
			Diversity: stats.NewDiversity(t.Weaknesses),
			Locations: t.LocationCounter().Sorted(),
			Frequency: t.Weaknesses.Sorted(),
		},
	}
	for _, m := range cvss.AllMetrics {
		c := t.Metrics[m]
		s.Metrics = append(s.Metrics, MetricTable{
			Metric:  m,
			Total:   c.Total(),
			Entries: c.Sorted(),
		})
	}
	if o.catalog != nil {
		s.Weaknesses.Names = map[string]string{}
		for _, e := range s.Weaknesses.Frequency {
			if name := o.catalog.Name(e.Value); name != "" {
				s.Weaknesses.Names[e.Value] = name
			}
		}
	}
	for _, e := range result.Errors {
		s.Errors = append(s.Errors, ErrorEntry{ID: e.ID, Error: e.Err.Error()})
	}
	return s
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
