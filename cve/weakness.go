package cve

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

const weaknessPrefix = "CWE-"

// Location tells which containers of a record cite weaknesses.
type Location int

const (
	LocationNone Location = iota
	LocationPrimary
	LocationSecondary
	LocationBoth
)

func (l Location) String() string {
	switch l {
	case LocationPrimary:
		return "cna only"
	case LocationSecondary:
		return "adp only"
	case LocationBoth:
		return "both"
	}
	return "none"
}

// Weaknesses holds the canonical CWE identifiers of one record. Occurrences
// keeps every citation, IDs the distinct ones.
type Weaknesses struct {
	Occurrences []string
	IDs         map[string]struct{}
	Location    Location
}

// Sorted returns the distinct identifiers in lexical order.
func (w Weaknesses) Sorted() []string {
	ids := lo.Keys(w.IDs)
	slices.Sort(ids)
	return ids
}

// CanonicalWeakness prefixes a bare identifier such as "79" with "CWE-".
func CanonicalWeakness(id string) string {
	if strings.HasPrefix(id, weaknessPrefix) {
		return id
	}
	return weaknessPrefix + id
}

// ExtractWeaknesses collects the weakness identifiers cited by cna and all adp
// containers.
func ExtractWeaknesses(r Record) Weaknesses {
	w := Weaknesses{IDs: map[string]struct{}{}}
	located := LocateWeaknesses(r)
	for _, source := range []Source{SourcePrimary, SourceSecondary} {
		for _, id := range located[source] {
			id = CanonicalWeakness(id)
			w.Occurrences = append(w.Occurrences, id)
			w.IDs[id] = struct{}{}
		}
	}

	_, primary := located[SourcePrimary]
	_, secondary := located[SourceSecondary]
	switch {
	case primary && secondary:
		w.Location = LocationBoth
	case primary:
		w.Location = LocationPrimary
	case secondary:
		w.Location = LocationSecondary
	}
	return w
}
