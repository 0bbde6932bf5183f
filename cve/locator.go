package cve

import "github.com/aquasecurity/vuln-list-stats/cvss"

type locator[T any] struct {
	source Source
	find   func(Record) []T
}

type located[T any] struct {
	source Source
	items  []T
}

// walk visits the locators in order and keeps every non-empty result until
// stop reports true for one of them.
func walk[T any](r Record, locators []locator[T], stop func([]T) bool) []located[T] {
	var found []located[T]
	for _, l := range locators {
		items := l.find(r)
		if len(items) == 0 {
			continue
		}
		found = append(found, located[T]{source: l.source, items: items})
		if stop(items) {
			break
		}
	}
	return found
}

var scoreLocators = []locator[ScoreBlock]{
	{source: SourcePrimary, find: primaryScores},
	{source: SourceSecondary, find: secondaryScores},
	{source: SourceLegacy, find: legacyScores},
}

var weaknessLocators = []locator[string]{
	{source: SourcePrimary, find: primaryWeaknesses},
	{source: SourceSecondary, find: secondaryWeaknesses},
}

// LocateScores returns the score blocks of the first tier holding at least
// one block of a known standard: cna, then every adp, then the legacy impact
// object. Blocks never come from more than one tier.
func LocateScores(r Record) ([]ScoreBlock, Source) {
	found := walk(r, scoreLocators, func([]ScoreBlock) bool { return true })
	if len(found) == 0 {
		return nil, SourceNone
	}
	return found[0].items, found[0].source
}

// LocateWeaknesses returns the raw weakness identifiers of cna and of every
// adp container. Unlike scores, all tiers are inspected.
func LocateWeaknesses(r Record) map[Source][]string {
	found := walk(r, weaknessLocators, func([]string) bool { return false })
	weaknesses := map[Source][]string{}
	for _, f := range found {
		weaknesses[f.source] = f.items
	}
	return weaknesses
}

func sectionScores(s Section) []ScoreBlock {
	var blocks []ScoreBlock
	for _, raw := range s.Metrics {
		v, d, ok := raw.Select()
		if !ok {
			continue
		}
		blocks = append(blocks, ScoreBlock{Version: v, Data: d})
	}
	return blocks
}

func primaryScores(r Record) []ScoreBlock {
	if r.Primary == nil {
		return nil
	}
	return sectionScores(*r.Primary)
}

func secondaryScores(r Record) []ScoreBlock {
	var blocks []ScoreBlock
	for _, s := range r.Secondary {
		blocks = append(blocks, sectionScores(s)...)
	}
	return blocks
}

func legacyScores(r Record) []ScoreBlock {
	switch {
	case r.Legacy == nil:
		return nil
	case r.Legacy.V3 != nil:
		return []ScoreBlock{{Version: r.Legacy.V3Version, Data: *r.Legacy.V3}}
	case r.Legacy.V2 != nil:
		return []ScoreBlock{{Version: cvss.V20, Data: *r.Legacy.V2}}
	}
	return nil
}

func primaryWeaknesses(r Record) []string {
	if r.Primary == nil {
		return nil
	}
	return r.Primary.Weaknesses
}

func secondaryWeaknesses(r Record) []string {
	var ids []string
	for _, s := range r.Secondary {
		ids = append(ids, s.Weaknesses...)
	}
	return ids
}
