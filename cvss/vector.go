package cvss

import "strings"

type Grammar int

const (
	GrammarV3 Grammar = iota
	GrammarV2
)

type vectorKey struct {
	key    string
	metric Metric
}

var grammars = map[Grammar][]vectorKey{
	GrammarV3: {
		{"C", Confidentiality},
		{"I", Integrity},
		{"A", Availability},
		{"AV", AttackVector},
		{"AC", AttackComplexity},
		{"PR", PrivilegesRequired},
		{"UI", UserInteraction},
		{"S", Scope},
	},
	GrammarV2: {
		{"C", Confidentiality},
		{"I", Integrity},
		{"A", Availability},
		{"AV", AttackVector},
		{"AC", AttackComplexity},
		{"Au", Authentication},
	},
}

// Metrics returns the dimensions a vector of this grammar can carry.
func (g Grammar) Metrics() []Metric {
	var metrics []Metric
	for _, k := range grammars[g] {
		metrics = append(metrics, k.metric)
	}
	return metrics
}

func (g Grammar) empty() Metrics {
	m := Metrics{}
	for _, k := range grammars[g] {
		m[k.metric] = Undetermined
	}
	return m
}

func (g Grammar) lookup(key string) (Metric, bool) {
	for _, k := range grammars[g] {
		if k.key == key {
			return k.metric, true
		}
	}
	return "", false
}

// ParseVector decodes a slash-delimited vector such as
// "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H". Segments without a colon and
// keys outside the grammar are ignored, a repeated key keeps its last value.
// Every dimension of the grammar is present in the result.
func ParseVector(text string, g Grammar) Metrics {
	m := g.empty()
	if text == "" {
		return m
	}

	for _, segment := range strings.Split(text, "/") {
		key, value, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		metric, ok := g.lookup(key)
		if !ok {
			continue
		}
		if value == "" {
			value = Undetermined
		}
		m[metric] = value
	}
	return m
}
