package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aquasecurity/vuln-list-stats/stats"
)

const ruleWidth = 60

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, a ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}

func (p *printer) heading(title string) {
	p.printf("\n%s\n%s\n%s\n", strings.Repeat("=", ruleWidth), title, strings.Repeat("=", ruleWidth))
}

func (p *printer) entries(entries []stats.Entry) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		if _, p.err = fmt.Fprintf(tw, "  %s\t%d\t(%.1f%%)\n", e.Value, e.Count, e.Percent); p.err != nil {
			return
		}
	}
	p.err = tw.Flush()
}

// Print renders s as plain text tables, most frequent values first.
func Print(w io.Writer, s Summary) error {
	p := &printer{w: w}
	t := s.Totals

	p.heading("CVSS METRICS ANALYSIS SUMMARY")
	if s.Revision != "" {
		p.printf("Corpus revision: %s\n", s.Revision)
	}
	p.printf("Documents processed: %d\n", t.Documents)
	p.printf("Documents with CVSS metrics: %d (%.1f%%)\n", t.WithMetrics, s.Coverage.Metrics)
	p.printf("Documents with CVSS v2.0 metrics: %d (%.1f%%)\n", t.V2, s.Coverage.V2)
	p.printf("Documents with CVSS v3.x metrics: %d (%.1f%%)\n", t.V3, s.Coverage.V3)
	if t.Filtered > 0 {
		p.printf("Documents filtered by publication date: %d\n", t.Filtered)
	}
	p.printf("Documents that failed to load or decode: %d\n", len(s.Errors))

	p.heading("METRIC DISTRIBUTION WITH PERCENTAGES")
	for _, table := range s.Metrics {
		p.printf("\n%s:\n%s\n", table.Metric, strings.Repeat("-", 40))
		p.entries(table.Entries)
		p.printf("  Total entries: %d\n", table.Total)
	}

	p.heading("SEVERITY LEVEL DISTRIBUTION")
	p.entries(s.Severity)

	p.heading("SCORE SOURCES AND VERSIONS")
	p.printf("Sources:\n")
	p.entries(s.Sources)
	p.printf("Versions:\n")
	p.entries(s.Versions)

	d := s.Weaknesses.Diversity
	p.heading("CWE ANALYSIS SUMMARY")
	p.printf("Documents with CWE IDs: %d (%.1f%%)\n", t.WithWeaknesses, s.Coverage.Weaknesses)
	p.printf("Unique CWE IDs: %d\n", d.Unique)
	p.printf("CWE occurrences: %d\n", d.Occurrences)
	p.printf("Shannon index: %.4f\n", d.Shannon)
	p.printf("Simpson index: %.4f\n", d.Simpson)
	p.printf("Gini coefficient: %.4f\n", d.Gini)

	p.heading("CWE ID LOCATION DISTRIBUTION")
	p.entries(s.Weaknesses.Locations)

	p.heading("ALL CWE IDS FOUND (sorted by frequency)")
	p.entries(s.Weaknesses.Frequency)
	if len(s.Weaknesses.Names) > 0 {
		p.printf("\nNames:\n")
		for _, e := range s.Weaknesses.Frequency {
			if name, ok := s.Weaknesses.Names[e.Value]; ok {
				p.printf("  %s: %s\n", e.Value, name)
			}
		}
	}

	if len(s.Errors) > 0 {
		p.heading("ERRORS")
		for _, e := range s.Errors {
			p.printf("%s: %s\n", e.ID, e.Error)
		}
	}
	return p.err
}
