package stats

import (
	"time"

	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/cve"
	"github.com/aquasecurity/vuln-list-stats/cvss"
)

// Block is the decoded form of one score block.
type Block struct {
	Version  cvss.Version
	Metrics  cvss.Metrics
	Severity cvss.Severity
}

// Partial is the contribution of a single document. It is computed without
// touching shared state and folded into FrequencyTables afterwards.
type Partial struct {
	ID         string
	Published  time.Time
	Source     cve.Source
	Blocks     []Block
	Weaknesses cve.Weaknesses
}

// Extract runs the whole per-document pipeline. The only error is a document
// that cannot be decoded at all.
func Extract(doc cve.Document) (Partial, error) {
	r, err := cve.Decode(doc)
	if err != nil {
		return Partial{}, xerrors.Errorf("decode error: %w", err)
	}

	scoreBlocks, source := cve.LocateScores(r)
	p := Partial{
		ID:         r.ID,
		Published:  r.Published,
		Source:     source,
		Weaknesses: cve.ExtractWeaknesses(r),
	}
	for _, sb := range scoreBlocks {
		p.Blocks = append(p.Blocks, Block{
			Version:  sb.Version,
			Metrics:  cvss.Decode(sb.Version, sb.Data),
			Severity: cvss.ResolveSeverity(sb.Data, sb.Version),
		})
	}
	return p, nil
}

// Family is the standard family a document is filed under: that of its first
// score block.
func (p Partial) Family() (cvss.Family, bool) {
	if len(p.Blocks) == 0 {
		return 0, false
	}
	return p.Blocks[0].Version.Family(), true
}
