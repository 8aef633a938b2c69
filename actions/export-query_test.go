package actions

import (
	"strings"
	"testing"

	"github.com/neeldave10/medlaunch-data-engineer/aws/s3"
)

func TestBuildStateCountsSQL(t *testing.T) {
	sql := buildStateCountsSQL("medlaunch", "facilities", "2024-02-01")
	for _, want := range []string{
		"UNLOAD (",
		"FROM medlaunch.facilities r",
		"CROSS JOIN UNNEST(r.accreditations) AS t(a)",
		"CAST(a.valid_until AS DATE) >= DATE '2024-02-01'",
		"COUNT(DISTINCT r.facility_id)",
		"'state' AS state, 'accredited_facilities'",
		"ORDER BY _order, state",
		"format='TEXTFILE'",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected SQL to contain %q:\n%v", want, sql)
		}
	}
}

func TestSubstituteOutputLocation(t *testing.T) {
	sql := substituteOutputLocation("TO '{OUTPUT}'", "s3://results/exports/a")
	if sql != "TO 's3://results/exports/a/'" {
		t.Fatalf("unexpected substitution result %q", sql)
	}
}

func TestResultsPrefixForObject(t *testing.T) {
	results := s3.AwsS3Bucket{Name: "results-bucket", Prefix: "exports"}
	keyPrefix, outputLocation := resultsPrefixForObject(results, "landing", "incoming/facilities.json", "2024-02-01")
	if keyPrefix != "exports/landing/incoming%2Ffacilities.json/2024-02-01/" {
		t.Fatalf("unexpected key prefix %v", keyPrefix)
	}
	if outputLocation != "s3://results-bucket/"+keyPrefix {
		t.Fatalf("unexpected output location %v", outputLocation)
	}
}

func TestResultsPrefixForObjectNoPrefix(t *testing.T) {
	results := s3.AwsS3Bucket{Name: "results-bucket"}
	keyPrefix, _ := resultsPrefixForObject(results, "landing", "a.json", "2024-02-01")
	if keyPrefix != "landing/a.json/2024-02-01/" {
		t.Fatalf("unexpected key prefix %v", keyPrefix)
	}
}

func TestIdempotencyTokenIsStable(t *testing.T) {
	trig := Trigger{SourceBucket: "landing", SourceKey: "a.json", EventID: "001"}
	sql := buildStateCountsSQL("db", "t", "2024-02-01")
	if idempotencyToken(trig, sql) != idempotencyToken(trig, sql) {
		t.Fatal("the token must be deterministic for one logical trigger")
	}
	// A different event is a different logical trigger.
	other := trig
	other.EventID = "002"
	if idempotencyToken(trig, sql) == idempotencyToken(other, sql) {
		t.Fatal("different events must not share a token")
	}
	// The same trigger on a later day carries a different dated query.
	sqlNextDay := buildStateCountsSQL("db", "t", "2024-02-02")
	if idempotencyToken(trig, sql) == idempotencyToken(trig, sqlNextDay) {
		t.Fatal("a new as-of date must produce a new token")
	}
}
