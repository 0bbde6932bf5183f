package cve

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/cvss"
)

// Decode converts a generic document into a Record. Only a body that is not
// an object fails; missing or wrongly typed members are treated as absent.
func Decode(doc Document) (Record, error) {
	root, ok := asObject(doc.Body)
	if !ok {
		return Record{}, xerrors.Errorf("unexpected body type %T: %w", doc.Body, ErrNotObject)
	}

	r := Record{
		ID:        recordID(doc.ID, root),
		Published: published(root),
	}

	containers := root.object("containers")
	if cna := containers.object("cna"); cna != nil {
		s := decodeSection(cna, "cna")
		r.Primary = &s
	}
	for i, adp := range containers.objects("adp") {
		r.Secondary = append(r.Secondary, decodeSection(adp, fmt.Sprintf("adp[%d]", i)))
	}

	if impact := root.object("impact"); impact != nil {
		r.Legacy = decodeImpact(impact)
	}
	return r, nil
}

func recordID(fallback string, root object) string {
	if id := root.object("cveMetadata").str("cveId"); id != "" {
		return id
	}
	if id := root.object("cve").object("CVE_data_meta").str("ID"); id != "" {
		return id
	}
	return fallback
}

func published(root object) time.Time {
	date := root.object("cveMetadata").str("datePublished")
	if date == "" {
		date = root.str("publishedDate")
	}
	if date == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(date)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeSection(o object, fallback string) Section {
	s := Section{
		Provider: o.object("providerMetadata").str("shortName"),
	}
	if s.Provider == "" {
		s.Provider = fallback
	}

	for _, m := range o.objects("metrics") {
		block := cvss.RawBlock{}
		for _, v := range cvss.Versions {
			if data, ok := asObject(m[v.Key()]); ok {
				block[v] = decodeData(data)
			}
		}
		s.Metrics = append(s.Metrics, block)
	}

	for _, pt := range o.objects("problemTypes") {
		for _, desc := range pt.objects("descriptions") {
			if id := desc.str("cweId"); id != "" {
				s.Weaknesses = append(s.Weaknesses, id)
			}
		}
	}
	return s
}

func decodeData(o object) cvss.Data {
	return cvss.Data{
		VectorString: o.str("vectorString"),
		Fields:       o.strings(),
		BaseSeverity: o.str("baseSeverity"),
		BaseScore:    o.number("baseScore"),
	}
}

func decodeImpact(o object) *Impact {
	impact := &Impact{}
	if v3 := o.object("baseMetricV3").object("cvssV3"); len(v3) > 0 {
		data := decodeData(v3)
		impact.V3 = &data
		impact.V3Version = legacyV3Version(v3.str("version"), data.VectorString)
	}
	if v2 := o.object("baseMetricV2").object("cvssV2"); len(v2) > 0 {
		data := decodeData(v2)
		impact.V2 = &data
	}
	if impact.V3 == nil && impact.V2 == nil {
		return nil
	}
	return impact
}

// legacyV3Version reads the minor version of an NVD cvssV3 object, which
// carries no cvssV3_x key of its own.
func legacyV3Version(version, vector string) cvss.Version {
	if version == "3.1" || strings.HasPrefix(vector, "CVSS:3.1/") {
		return cvss.V31
	}
	return cvss.V30
}
