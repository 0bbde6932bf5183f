package cvss

import "strings"

// Data is one scoring authority's representation of a single CVSS block.
// Either VectorString or Fields is expected to be populated.
type Data struct {
	VectorString string
	Fields       map[string]string
	BaseSeverity string
	BaseScore    *float64
}

// RawBlock is one entry of a metrics list keyed by the standard it declares.
// Entries with keys outside Versions (cvssV4_0, other) never reach it.
type RawBlock map[Version]Data

// Select returns the block data for the first known standard in dispatch
// order.
func (b RawBlock) Select() (Version, Data, bool) {
	for _, v := range Versions {
		if d, ok := b[v]; ok {
			return v, d, true
		}
	}
	return 0, Data{}, false
}

type directField struct {
	metric Metric
	field  string
}

var directFields = map[Family][]directField{
	FamilyV3: {
		{Confidentiality, "confidentialityImpact"},
		{Integrity, "integrityImpact"},
		{Availability, "availabilityImpact"},
		{AttackVector, "attackVector"},
		{AttackComplexity, "attackComplexity"},
		{PrivilegesRequired, "privilegesRequired"},
		{UserInteraction, "userInteraction"},
		{Scope, "scope"},
	},
	FamilyV2: {
		{Confidentiality, "confidentialityImpact"},
		{Integrity, "integrityImpact"},
		{Availability, "availabilityImpact"},
		{AttackVector, "accessVector"},
		{AttackComplexity, "accessComplexity"},
		{Authentication, "authentication"},
	},
}

// Decode canonicalizes a block of the given standard. The vector string wins
// over direct fields when it is non-empty.
func Decode(v Version, d Data) Metrics {
	var m Metrics
	if d.VectorString != "" {
		m = ParseVector(d.VectorString, v.Grammar())
	} else {
		m = decodeFields(v.Family(), d.Fields)
	}

	for _, metric := range impactMetrics {
		m[metric] = NormalizeImpact(m[metric])
	}
	return m
}

// DecodeBlock selects the standard of a raw block and decodes it.
func DecodeBlock(b RawBlock) (Version, Metrics, bool) {
	v, d, ok := b.Select()
	if !ok {
		return 0, nil, false
	}
	return v, Decode(v, d), true
}

func decodeFields(f Family, fields map[string]string) Metrics {
	m := Metrics{}
	for _, df := range directFields[f] {
		value := fields[df.field]
		if value == "" {
			value = Undetermined
		}
		m[df.metric] = value
	}
	return m
}

// NormalizeImpact folds the letter and word spellings of a CIA impact value
// into one form. NormalizeImpact(NormalizeImpact(x)) == NormalizeImpact(x).
func NormalizeImpact(value string) string {
	switch strings.ToUpper(value) {
	case "H", "HIGH":
		return "HIGH"
	case "L", "LOW":
		return "LOW"
	case "N", "NONE":
		return "NONE"
	case "M", "MEDIUM":
		return "MEDIUM"
	}
	return Undetermined
}
