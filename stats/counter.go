package stats

import (
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Counter maps a value to the number of times it was seen.
type Counter map[string]int

type Entry struct {
	Value   string  `json:"value" yaml:"value"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

func (c Counter) Add(value string) {
	c[value]++
}

func (c Counter) Total() int {
	return lo.Sum(lo.Values(c))
}

func (c Counter) merge(other Counter) {
	for value, n := range other {
		c[value] += n
	}
}

// Sorted returns the entries by descending count, ties broken by value.
func (c Counter) Sorted() []Entry {
	total := c.Total()
	entries := lo.MapToSlice(c, func(value string, n int) Entry {
		return Entry{Value: value, Count: n, Percent: percent(n, total)}
	})
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	return entries
}

// Top returns at most n entries of Sorted.
func (c Counter) Top(n int) []Entry {
	entries := c.Sorted()
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
