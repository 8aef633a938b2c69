package s3

import "testing"

func TestParseDSN(t *testing.T) {
	b, err := ParseDSN("s3://medlaunch/exports/state_counts", "eu-west-2")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "medlaunch" || b.Prefix != "exports/state_counts" || b.Region != "eu-west-2" {
		t.Fatalf("unexpected parse result: %+v", b)
	}
	if b.URL() != "s3://medlaunch/exports/state_counts/" {
		t.Fatalf("unexpected URL: %v", b.URL())
	}
}

func TestParseDSNWithoutScheme(t *testing.T) {
	b, err := ParseDSN("medlaunch/incoming", "")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "medlaunch" || b.Prefix != "incoming" {
		t.Fatalf("unexpected parse result: %+v", b)
	}
}

func TestParseDSNRejectsOtherSchemes(t *testing.T) {
	if _, err := ParseDSN("http://medlaunch/incoming", ""); err == nil {
		t.Fatal("expected an error for non-s3 scheme")
	}
}

func TestParseDSNRejectsMissingBucket(t *testing.T) {
	if _, err := ParseDSN("s3:///incoming", ""); err == nil {
		t.Fatal("expected an error for missing bucket name")
	}
}
