package actions

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/neeldave10/medlaunch-data-engineer/aws/s3"
)

var testNow = func() time.Time {
	return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
}

const testFacilitiesJSON = `[
  {"facility_id": "F1", "facility_name": "Mercy General", "location": {"city": "Springfield", "state": "IL"},
   "employee_count": 50, "services": ["cardiology"],
   "accreditations": [{"accreditation_body": "JCI", "valid_until": "2024-05-01"}]},
  {"facility_id": "F2", "facility_name": "Hope Medical", "location": {"city": "Austin", "state": "TX"},
   "employee_count": 200, "services": ["oncology"],
   "accreditations": [{"accreditation_body": "JCI", "valid_until": "2099-01-01"}]}
]`

func newFilterConfig(store *s3.MockStore) *FilterExpiringConfig {
	return &FilterExpiringConfig{
		Store:        store,
		Bucket:       "test-bucket",
		OutputPrefix: "filtered",
		OnlyKey:      "incoming/facilities.json",
		Months:       6,
		LogLevel:     "error",
		Now:          testNow,
	}
}

func TestRunFilterExpiringTriggerMode(t *testing.T) {
	store := s3.NewMockStore()
	store.Objects["incoming/facilities.json"] = []byte(testFacilitiesJSON)
	res, err := RunFilterExpiring(newFilterConfig(store))
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if res.FilesScanned != 1 || res.RecordsIn != 2 || res.RecordsOut != 1 || res.UnitsSkipped != 0 {
		t.Fatalf("unexpected result counts: %+v", res)
	}
	wantKey := "filtered/facilities_filtered.ndjson"
	out, ok := store.Objects[wantKey]
	if !ok {
		t.Fatalf("expected output object %v; store has %v", wantKey, store.Objects)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 output line, got %v: %q", len(lines), string(out))
	}
	if !strings.Contains(lines[0], `"facility_id":"F1"`) {
		t.Fatalf("expected the expiring facility F1 in output, got %q", lines[0])
	}
	if strings.Contains(string(out), "F2") {
		t.Fatal("facility F2 expires in 2099 and must not be emitted")
	}
	if ct := store.ContentTypes[wantKey]; ct != "application/x-ndjson" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestRunFilterExpiringIsIdempotent(t *testing.T) {
	store := s3.NewMockStore()
	store.Objects["incoming/facilities.json"] = []byte(testFacilitiesJSON)
	if _, err := RunFilterExpiring(newFilterConfig(store)); err != nil {
		t.Fatal("unexpected error on first run: ", err)
	}
	first := store.Objects["filtered/facilities_filtered.ndjson"]
	if _, err := RunFilterExpiring(newFilterConfig(store)); err != nil {
		t.Fatal("unexpected error on second run: ", err)
	}
	second := store.Objects["filtered/facilities_filtered.ndjson"]
	if !bytes.Equal(first, second) {
		t.Fatalf("rerun output differs:\n%q\n%q", first, second)
	}
	if n := store.PutCounts["filtered/facilities_filtered.ndjson"]; n != 2 {
		t.Fatalf("expected the rerun to overwrite (2 puts), got %v", n)
	}
}

func TestRunFilterExpiringNoSurvivorsWritesNothing(t *testing.T) {
	store := s3.NewMockStore()
	store.Objects["incoming/facilities.json"] = []byte(
		`{"facility_id": "F2", "accreditations": [{"accreditation_body": "JCI", "valid_until": "2099-01-01"}]}`)
	res, err := RunFilterExpiring(newFilterConfig(store))
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if res.RecordsOut != 0 {
		t.Fatalf("expected no records out, got %v", res.RecordsOut)
	}
	if len(store.Objects) != 1 { // only the input should exist...
		t.Fatalf("expected no output object, store has %v", store.Objects)
	}
}

func TestRunFilterExpiringSkipsMalformedLines(t *testing.T) {
	store := s3.NewMockStore()
	ndjson := `{"facility_id": "F1", "accreditations": [{"valid_until": "2024-03-15"}]}
{"facility_id": "broken", "accreditations": [
{"facility_id": "F3", "accreditations": [{"valid_until": "2024-04-01"}]}
`
	store.Objects["incoming/facilities.json"] = []byte(ndjson)
	res, err := RunFilterExpiring(newFilterConfig(store))
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if res.UnitsSkipped != 1 {
		t.Fatalf("expected 1 skipped unit, got %v", res.UnitsSkipped)
	}
	out := string(store.Objects["filtered/facilities_filtered.ndjson"])
	if !strings.Contains(out, "F1") || !strings.Contains(out, "F3") {
		t.Fatalf("expected records around the malformed line to survive, got %q", out)
	}
}

func TestRunFilterExpiringAppliesFilterRule(t *testing.T) {
	store := s3.NewMockStore()
	store.Objects["incoming/facilities.json"] = []byte(`[
  {"facility_id": "F1", "employee_count": 50, "accreditations": [{"valid_until": "2024-05-01"}]},
  {"facility_id": "F4", "employee_count": 500, "accreditations": [{"valid_until": "2024-05-01"}]}
]`)
	cfg := newFilterConfig(store)
	cfg.FilterRule = `{"<": [{"var": "employee_count"}, 100]}`
	res, err := RunFilterExpiring(cfg)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if res.RecordsOut != 1 {
		t.Fatalf("expected 1 record out after the rule, got %v", res.RecordsOut)
	}
	out := string(store.Objects["filtered/facilities_filtered.ndjson"])
	if !strings.Contains(out, "F1") || strings.Contains(out, "F4") {
		t.Fatalf("rule should keep F1 and drop F4, got %q", out)
	}
}

func TestRunFilterExpiringRejectsBadRule(t *testing.T) {
	cfg := newFilterConfig(s3.NewMockStore())
	cfg.FilterRule = `{"<": [{"var"`
	if _, err := RunFilterExpiring(cfg); err == nil {
		t.Fatal("expected an error for an invalid rule")
	}
}

func TestRunFilterExpiringArchivesProcessedInput(t *testing.T) {
	store := s3.NewMockStore()
	store.Objects["incoming/facilities.json"] = []byte(testFacilitiesJSON)
	cfg := newFilterConfig(store)
	cfg.ArchivePrefix = "processed/"
	res, err := RunFilterExpiring(cfg)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if _, ok := store.Objects["incoming/facilities.json"]; ok {
		t.Fatal("expected the input object to be moved out of the input prefix")
	}
	if _, ok := store.Objects["processed/facilities.json"]; !ok {
		t.Fatalf("expected the input under the archive prefix, store has %v", store.Objects)
	}
	if len(res.ArchivedKeys) != 1 || res.ArchivedKeys[0] != "processed/facilities.json" {
		t.Fatalf("unexpected archived keys: %v", res.ArchivedKeys)
	}
	if _, ok := store.Objects["filtered/facilities_filtered.ndjson"]; !ok {
		t.Fatal("archival must not replace the filtered output")
	}
}

func TestRunFilterExpiringScansPrefix(t *testing.T) {
	store := s3.NewMockStore()
	store.Objects["incoming/a.json"] = []byte(`{"facility_id": "F1", "accreditations": [{"valid_until": "2024-03-01"}]}`)
	store.Objects["incoming/b.json"] = []byte(`{"facility_id": "F5", "accreditations": [{"valid_until": "2024-04-01"}]}`)
	store.Objects["other/c.json"] = []byte(`{"facility_id": "F6", "accreditations": [{"valid_until": "2024-04-01"}]}`)
	cfg := newFilterConfig(store)
	cfg.OnlyKey = ""
	cfg.InputPrefix = "incoming/"
	res, err := RunFilterExpiring(cfg)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if res.FilesScanned != 2 {
		t.Fatalf("expected 2 files scanned under the prefix, got %v", res.FilesScanned)
	}
	if len(res.OutputKeys) != 2 {
		t.Fatalf("expected 2 output objects, got %v", res.OutputKeys)
	}
}

func TestRunFilterExpiringRequiresInput(t *testing.T) {
	cfg := newFilterConfig(s3.NewMockStore())
	cfg.OnlyKey = ""
	cfg.InputPrefix = ""
	if _, err := RunFilterExpiring(cfg); err == nil {
		t.Fatal("expected an error when neither a key nor a prefix is given")
	}
}
