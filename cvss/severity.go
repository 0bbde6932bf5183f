package cvss

type Severity string

const (
	Critical             Severity = "Critical"
	High                 Severity = "High"
	Medium               Severity = "Medium"
	Low                  Severity = "Low"
	SeverityUndetermined Severity = Undetermined
)

// Severities lists the labels in reporting order.
var Severities = []Severity{Critical, High, Medium, Low, SeverityUndetermined}

var baseSeverities = map[string]Severity{
	"CRITICAL": Critical,
	"HIGH":     High,
	"MEDIUM":   Medium,
	"LOW":      Low,
}

// ResolveSeverity derives the label of a block. v3 blocks use their
// baseSeverity when one is set, even if baseScore disagrees; the score is only
// consulted when no label exists. v2 blocks are always scored.
func ResolveSeverity(d Data, v Version) Severity {
	if v.Family() == FamilyV3 && d.BaseSeverity != "" {
		if s, ok := baseSeverities[d.BaseSeverity]; ok {
			return s
		}
		return SeverityUndetermined
	}
	if d.BaseScore != nil {
		return SeverityFromScore(*d.BaseScore, v.Family())
	}
	return SeverityUndetermined
}

// SeverityFromScore applies the qualitative rating scale of the family.
// v2 has no Critical tier.
func SeverityFromScore(score float64, f Family) Severity {
	if f == FamilyV3 && score >= 9.0 {
		return Critical
	}
	switch {
	case score >= 7.0:
		return High
	case score >= 4.0:
		return Medium
	case score >= 0.1:
		return Low
	}
	return SeverityUndetermined
}
