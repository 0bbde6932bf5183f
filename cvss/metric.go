package cvss

import "fmt"

// Undetermined is stored for every dimension that is absent or carries a value
// that could not be recognized.
const Undetermined = "N/A"

type Metric string

const (
	Confidentiality    Metric = "Confidentiality"
	Integrity          Metric = "Integrity"
	Availability       Metric = "Availability"
	AttackVector       Metric = "Attack Vector"
	AttackComplexity   Metric = "Attack Complexity"
	PrivilegesRequired Metric = "Privileges Required"
	UserInteraction    Metric = "User Interaction"
	Scope              Metric = "Scope"
	Authentication     Metric = "Authentication"
)

// AllMetrics lists every dimension in reporting order.
var AllMetrics = []Metric{
	Confidentiality,
	Integrity,
	Availability,
	AttackVector,
	AttackComplexity,
	PrivilegesRequired,
	UserInteraction,
	Scope,
	Authentication,
}

var impactMetrics = []Metric{Confidentiality, Integrity, Availability}

// Metrics is the canonical metric set decoded from one score block.
type Metrics map[Metric]string

type Family int

const (
	FamilyV3 Family = iota
	FamilyV2
)

func (f Family) String() string {
	switch f {
	case FamilyV3:
		return "v3.x"
	case FamilyV2:
		return "v2.0"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// Version identifies the scoring standard of a score block.
type Version int

const (
	V31 Version = iota + 1
	V30
	V20
)

// Versions is the dispatch order used when a block carries more than one
// standard key.
var Versions = []Version{V31, V30, V20}

// Key returns the name of the object holding the block in a CVE record.
func (v Version) Key() string {
	switch v {
	case V31:
		return "cvssV3_1"
	case V30:
		return "cvssV3_0"
	case V20:
		return "cvssV2_0"
	}
	return ""
}

func (v Version) String() string {
	switch v {
	case V31:
		return "3.1"
	case V30:
		return "3.0"
	case V20:
		return "2.0"
	}
	return "unknown"
}

func (v Version) Family() Family {
	if v == V20 {
		return FamilyV2
	}
	return FamilyV3
}

func (v Version) Grammar() Grammar {
	if v == V20 {
		return GrammarV2
	}
	return GrammarV3
}
