package actions

import (
	"io/ioutil"
	"os"
	"path"
	"testing"
)

func writeTempJobFile(t *testing.T, name, contents string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "job")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	fileName := path.Join(dir, name)
	if err := ioutil.WriteFile(fileName, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return fileName
}

func TestLoadFilterJobYAML(t *testing.T) {
	fileName := writeTempJobFile(t, "job.yaml", `
action: filter
filter:
  bucket: landing
  onlyKey: incoming/facilities.json
  months: 3
`)
	cfg := FilterExpiringConfig{Months: 6}
	if err := LoadFilterJob(fileName, &cfg); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if cfg.Bucket != "landing" || cfg.OnlyKey != "incoming/facilities.json" || cfg.Months != 3 {
		t.Fatalf("unexpected config after job load: %+v", cfg)
	}
}

func TestLoadExportJobJSON(t *testing.T) {
	fileName := writeTempJobFile(t, "job.json",
		`{"action": "export", "export": {"sourceBucket": "landing", "sourceKey": "a.json", "eventId": "001"}}`)
	cfg := ExportStateCountsConfig{}
	if err := LoadExportJob(fileName, &cfg); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if cfg.Trigger.SourceBucket != "landing" || cfg.Trigger.SourceKey != "a.json" || cfg.Trigger.EventID != "001" {
		t.Fatalf("unexpected trigger %+v", cfg.Trigger)
	}
}

func TestLoadJobRejectsWrongAction(t *testing.T) {
	fileName := writeTempJobFile(t, "job.yaml", "action: export\nexport:\n  sourceBucket: b\n  sourceKey: k\n")
	if err := LoadFilterJob(fileName, &FilterExpiringConfig{}); err == nil {
		t.Fatal("expected an error for a mismatched action")
	}
}

func TestLoadJobRejectsUnknownExtension(t *testing.T) {
	fileName := writeTempJobFile(t, "job.txt", "action: filter")
	if _, err := loadJobFromFile(fileName); err == nil {
		t.Fatal("expected an error for an unknown file extension")
	}
}
