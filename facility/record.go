// Package facility holds the inbound record model for accredited facilities
// plus the tolerant decoding and expiry-filter logic applied to them.
package facility

import "time"

// FacilityRecord is one inbound facility entity. The schema is permissive:
// absent optional fields stay zero-valued, matching the schema-on-read
// tolerance of the ingestion layer. FacilityID is the identity key used by
// downstream joins and distinct counts.
type FacilityRecord struct {
	FacilityID     string          `json:"facility_id"`
	FacilityName   string          `json:"facility_name,omitempty"`
	Location       Location        `json:"location,omitempty"`
	EmployeeCount  *int            `json:"employee_count,omitempty"`
	Services       []string        `json:"services,omitempty"`
	Labs           []Lab           `json:"labs,omitempty"`
	Accreditations []Accreditation `json:"accreditations,omitempty"`
}

type Location struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

type Lab struct {
	LabName        string   `json:"lab_name,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
}

type Accreditation struct {
	AccreditationBody string `json:"accreditation_body,omitempty"`
	AccreditationID   string `json:"accreditation_id,omitempty"`
	ValidUntil        string `json:"valid_until,omitempty"`
}

// DerivedMetrics are the per-facility extraction metrics.
// FirstAccreditationExpiry is the minimum over parseable valid_until dates and
// nil when no accreditation parses. Note this is the extraction-time metric;
// the export query's "still valid now" predicate is deliberately different
// and must not be conflated with it.
type DerivedMetrics struct {
	NumberOfOfferedServices  int
	FirstAccreditationExpiry *time.Time
}

// Metrics computes the derived metrics for one record.
// Unparseable valid_until dates are ignored, never treated as a minimum.
func (r *FacilityRecord) Metrics() DerivedMetrics {
	m := DerivedMetrics{NumberOfOfferedServices: len(r.Services)}
	for _, a := range r.Accreditations {
		d, ok := ParseValidUntil(a.ValidUntil)
		if !ok { // if the date doesn't parse it contributes nothing...
			continue
		}
		if m.FirstAccreditationExpiry == nil || d.Before(*m.FirstAccreditationExpiry) {
			dd := d
			m.FirstAccreditationExpiry = &dd
		}
	}
	return m
}
