package stats

import (
	"github.com/aquasecurity/vuln-list-stats/cve"
	"github.com/aquasecurity/vuln-list-stats/cvss"
)

type Totals struct {
	// Documents counts every decoded document that passed the filters.
	Documents int `json:"documents" yaml:"documents"`
	// WithMetrics counts documents with at least one score block.
	WithMetrics int `json:"with_metrics" yaml:"with_metrics"`
	V2          int `json:"cvss_v2" yaml:"cvss_v2"`
	V3          int `json:"cvss_v3" yaml:"cvss_v3"`
	// WithWeaknesses counts documents citing at least one weakness.
	WithWeaknesses int `json:"with_weaknesses" yaml:"with_weaknesses"`
	// Filtered counts decoded documents dropped by the publication filter.
	Filtered int `json:"filtered" yaml:"filtered"`
}

// FrequencyTables holds the corpus-wide counters of one run.
type FrequencyTables struct {
	Metrics           map[cvss.Metric]Counter
	Severity          map[cvss.Severity]int
	Weaknesses        Counter
	WeaknessLocations map[cve.Location]int
	Sources           map[cve.Source]int
	Versions          map[cvss.Version]int
	Totals            Totals
}

func NewFrequencyTables() *FrequencyTables {
	t := &FrequencyTables{
		Metrics:           map[cvss.Metric]Counter{},
		Severity:          map[cvss.Severity]int{},
		Weaknesses:        Counter{},
		WeaknessLocations: map[cve.Location]int{},
		Sources:           map[cve.Source]int{},
		Versions:          map[cvss.Version]int{},
	}
	for _, m := range cvss.AllMetrics {
		t.Metrics[m] = Counter{}
	}
	return t
}

// Absorb folds the contribution of one document into the tables.
func (t *FrequencyTables) Absorb(p Partial) {
	t.Totals.Documents++
	t.Sources[p.Source]++

	if family, ok := p.Family(); ok {
		t.Totals.WithMetrics++
		switch family {
		case cvss.FamilyV2:
			t.Totals.V2++
		case cvss.FamilyV3:
			t.Totals.V3++
		}
	}

	for _, b := range p.Blocks {
		t.Versions[b.Version]++
		for metric, value := range b.Metrics {
			t.counter(metric).Add(value)
		}
		if b.Severity != cvss.SeverityUndetermined {
			t.Severity[b.Severity]++
		}
	}

	for _, id := range p.Weaknesses.Occurrences {
		t.Weaknesses.Add(id)
	}
	if len(p.Weaknesses.IDs) > 0 {
		t.Totals.WithWeaknesses++
		t.WeaknessLocations[p.Weaknesses.Location]++
	}
}

// Merge adds the counters of other into t.
func (t *FrequencyTables) Merge(other *FrequencyTables) {
	for metric, c := range other.Metrics {
		t.counter(metric).merge(c)
	}
	for s, n := range other.Severity {
		t.Severity[s] += n
	}
	t.Weaknesses.merge(other.Weaknesses)
	for l, n := range other.WeaknessLocations {
		t.WeaknessLocations[l] += n
	}
	for s, n := range other.Sources {
		t.Sources[s] += n
	}
	for v, n := range other.Versions {
		t.Versions[v] += n
	}

	t.Totals.Documents += other.Totals.Documents
	t.Totals.WithMetrics += other.Totals.WithMetrics
	t.Totals.V2 += other.Totals.V2
	t.Totals.V3 += other.Totals.V3
	t.Totals.WithWeaknesses += other.Totals.WithWeaknesses
	t.Totals.Filtered += other.Totals.Filtered
}

func (t *FrequencyTables) counter(m cvss.Metric) Counter {
	c, ok := t.Metrics[m]
	if !ok {
		c = Counter{}
		t.Metrics[m] = c
	}
	return c
}

// SeverityCounter returns the severity table keyed by label.
func (t *FrequencyTables) SeverityCounter() Counter {
	c := Counter{}
	for s, n := range t.Severity {
		c[string(s)] = n
	}
	return c
}

// LocationCounter returns the weakness location table keyed by its label.
func (t *FrequencyTables) LocationCounter() Counter {
	c := Counter{}
	for l, n := range t.WeaknessLocations {
		c[l.String()] = n
	}
	return c
}

// SourceCounter returns the score source table keyed by container name.
func (t *FrequencyTables) SourceCounter() Counter {
	c := Counter{}
	for s, n := range t.Sources {
		c[s.String()] = n
	}
	return c
}

// VersionCounter returns the per-block standard version table.
func (t *FrequencyTables) VersionCounter() Counter {
	c := Counter{}
	for v, n := range t.Versions {
		c[v.String()] = n
	}
	return c
}
