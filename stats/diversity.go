package stats

import (
	"math"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Diversity summarizes how concentrated the weakness identifiers are.
type Diversity struct {
	Unique      int     `json:"unique" yaml:"unique"`
	Occurrences int     `json:"occurrences" yaml:"occurrences"`
	Shannon     float64 `json:"shannon" yaml:"shannon"`
	Simpson     float64 `json:"simpson" yaml:"simpson"`
	Gini        float64 `json:"gini" yaml:"gini"`
}

// NewDiversity computes the Shannon index, the Simpson index (1 - Σp²) and the
// Gini coefficient of c.
func NewDiversity(c Counter) Diversity {
	counts := lo.Filter(lo.Values(c), func(n int, _ int) bool { return n > 0 })
	d := Diversity{
		Unique:      len(counts),
		Occurrences: lo.Sum(counts),
	}
	if d.Occurrences == 0 {
		return d
	}

	total := float64(d.Occurrences)
	var sumSquares float64
	for _, n := range counts {
		p := float64(n) / total
		d.Shannon -= p * math.Log(p)
		sumSquares += p * p
	}
	d.Simpson = 1 - sumSquares

	slices.Sort(counts)
	var cumulative, sumCumulative float64
	for _, n := range counts {
		cumulative += float64(n)
		sumCumulative += cumulative
	}
	size := float64(len(counts))
	d.Gini = (size + 1 - 2*sumCumulative/cumulative) / size
	return d
}
