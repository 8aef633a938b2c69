package actions

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestTriggersFromS3Event(t *testing.T) {
	e := events.S3Event{Records: []events.S3EventRecord{
		{
			EventSource: "aws:s3",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "landing"},
				Object: events.S3Object{Key: "incoming/my+facilities%282024%29.json", Sequencer: "0055AED6DCD90281E5"},
			},
		},
		{EventSource: "aws:sns"}, // not an S3 record; must be ignored.
	}}
	triggers := TriggersFromS3Event(e)
	if len(triggers) != 1 {
		t.Fatalf("expected 1 trigger, got %v", len(triggers))
	}
	trig := triggers[0]
	if trig.SourceBucket != "landing" {
		t.Fatalf("unexpected bucket %v", trig.SourceBucket)
	}
	if trig.SourceKey != "incoming/my facilities(2024).json" {
		t.Fatalf("expected the key to be unescaped, got %q", trig.SourceKey)
	}
	if trig.EventID != "0055AED6DCD90281E5" {
		t.Fatalf("expected the sequencer as event id, got %v", trig.EventID)
	}
}

func TestUnescapeKeyBadEscape(t *testing.T) {
	// A key that fails to decode comes back untouched rather than dropped.
	if got := UnescapeKey("bad%zz"); got != "bad%zz" {
		t.Fatalf("expected the undecodable key as-is, got %q", got)
	}
}
