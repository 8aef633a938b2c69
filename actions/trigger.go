package actions

import (
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// Trigger identifies one newly created object. EventID is the delivery
// platform's identity for the event (the S3 record sequencer), stable across
// redeliveries of the same logical trigger, so the idempotency token derived
// from a Trigger survives retries.
type Trigger struct {
	SourceBucket string `json:"source_bucket" errorTxt:"source bucket" mandatory:"yes"`
	SourceKey    string `json:"source_key" errorTxt:"source key" mandatory:"yes"`
	EventID      string `json:"event_id,omitempty"`
}

// TriggersFromS3Event maps the records of an S3 notification event to Triggers.
// Non-S3 records are ignored. Object keys arrive URL-encoded with '+' for
// spaces and are unescaped here.
func TriggersFromS3Event(e events.S3Event) []Trigger {
	triggers := make([]Trigger, 0, len(e.Records))
	for _, rec := range e.Records {
		if rec.EventSource != "aws:s3" { // if the record came from somewhere unexpected...
			continue
		}
		triggers = append(triggers, Trigger{
			SourceBucket: rec.S3.Bucket.Name,
			SourceKey:    UnescapeKey(rec.S3.Object.Key),
			EventID:      rec.S3.Object.Sequencer,
		})
	}
	return triggers
}

// UnescapeKey decodes an S3 event object key ('+' means space, then percent escapes).
// A key that fails to decode is returned as-is rather than dropped.
func UnescapeKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}
