package facility

import (
	"testing"
	"time"
)

func TestMetricsServiceCount(t *testing.T) {
	r := FacilityRecord{Services: []string{"imaging", "bloods", "dialysis"}}
	if m := r.Metrics(); m.NumberOfOfferedServices != 3 {
		t.Fatalf("expected 3 services, got %v", m.NumberOfOfferedServices)
	}
	empty := FacilityRecord{}
	if m := empty.Metrics(); m.NumberOfOfferedServices != 0 {
		t.Fatalf("expected 0 services, got %v", m.NumberOfOfferedServices)
	}
}

func TestMetricsFirstAccreditationExpiryIsMinimum(t *testing.T) {
	r := FacilityRecord{Accreditations: []Accreditation{
		{ValidUntil: "2026-01-01"},
		{ValidUntil: "2024-05-20"},
		{ValidUntil: "garbage"}, // parse failures are ignored for the minimum.
		{ValidUntil: "2025-12-31"},
	}}
	m := r.Metrics()
	if m.FirstAccreditationExpiry == nil {
		t.Fatal("expected a minimum expiry date")
	}
	want := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	if !m.FirstAccreditationExpiry.Equal(want) {
		t.Fatalf("expected minimum %v, got %v", want, m.FirstAccreditationExpiry)
	}
}

func TestMetricsFirstAccreditationExpiryNilWhenNothingParses(t *testing.T) {
	r := FacilityRecord{Accreditations: []Accreditation{{ValidUntil: "N/A"}}}
	if m := r.Metrics(); m.FirstAccreditationExpiry != nil {
		t.Fatalf("expected nil expiry, got %v", m.FirstAccreditationExpiry)
	}
}
