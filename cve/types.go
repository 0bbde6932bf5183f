package cve

import (
	"fmt"
	"time"

	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/cvss"
)

// ErrNotObject is returned when a document is not a JSON object.
var ErrNotObject = xerrors.New("document is not a JSON object")

// Document is one parsed vulnerability record as handed over by the corpus
// reader. Body is the generic JSON tree.
type Document struct {
	ID   string
	Body any
}

// DocumentError reports a document that was excluded from the statistics.
type DocumentError struct {
	ID  string
	Err error
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.ID, e.Err)
}

func (e DocumentError) Unwrap() error {
	return e.Err
}

// Record is the typed view of a document. Absent containers are nil.
type Record struct {
	ID        string
	Published time.Time

	// CVE JSON 5.x
	Primary   *Section
	Secondary []Section

	// NVD JSON 1.x
	Legacy *Impact
}

// Section is one authority container: cna or an adp entry.
type Section struct {
	Provider   string
	Metrics    []cvss.RawBlock
	Weaknesses []string
}

type Impact struct {
	V3        *cvss.Data
	V3Version cvss.Version
	V2        *cvss.Data
}

type Source int

const (
	SourceNone Source = iota
	SourcePrimary
	SourceSecondary
	SourceLegacy
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "cna"
	case SourceSecondary:
		return "adp"
	case SourceLegacy:
		return "impact"
	}
	return "none"
}

// ScoreBlock is a raw block whose standard has been recognized.
type ScoreBlock struct {
	Version cvss.Version
	Data    cvss.Data
}
