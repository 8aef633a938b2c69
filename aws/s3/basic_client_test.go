package s3

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// pagedListAPI scripts ListObjects responses page by page and records the
// marker each call arrived with.
type pagedListAPI struct {
	s3iface.S3API
	pages   []*s3.ListObjectsOutput
	markers []string
}

func (a *pagedListAPI) ListObjects(in *s3.ListObjectsInput) (*s3.ListObjectsOutput, error) {
	a.markers = append(a.markers, aws.StringValue(in.Marker))
	if len(a.markers) > len(a.pages) { // if we are asked for more pages than were scripted...
		return nil, errors.Errorf("listed past the final page with marker %q", aws.StringValue(in.Marker))
	}
	return a.pages[len(a.markers)-1], nil
}

func s3Objects(keys ...string) []*s3.Object {
	out := make([]*s3.Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, &s3.Object{Key: aws.String(k)})
	}
	return out
}

// A truncated page may contain nothing but directory placeholder objects.
// The continuation marker must still advance past them or listing never
// reaches the next page.
func TestListAdvancesPastPlaceholderOnlyPages(t *testing.T) {
	api := &pagedListAPI{pages: []*s3.ListObjectsOutput{
		{Contents: s3Objects("incoming/"), IsTruncated: aws.Bool(true)},
		{Contents: s3Objects("incoming/sub/"), IsTruncated: aws.Bool(true)},
		{Contents: s3Objects("incoming/facilities.json"), IsTruncated: aws.Bool(false)},
	}}
	client := NewBasicClientWithAPI("landing", "eu-west-2", "", api)
	keys, err := client.List("incoming/")
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if len(keys) != 1 || keys[0] != "incoming/facilities.json" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	wantMarkers := []string{"", "incoming/", "incoming/sub/"}
	if len(api.markers) != len(wantMarkers) {
		t.Fatalf("expected %v list calls, got %v with markers %q", len(wantMarkers), len(api.markers), api.markers)
	}
	for i, want := range wantMarkers {
		if api.markers[i] != want {
			t.Fatalf("call %v used marker %q, want %q", i, api.markers[i], want)
		}
	}
}

func TestListCollectsKeysAcrossPages(t *testing.T) {
	api := &pagedListAPI{pages: []*s3.ListObjectsOutput{
		{Contents: s3Objects("incoming/a.json", "incoming/b.json"), IsTruncated: aws.Bool(true)},
		{Contents: s3Objects("incoming/c.json"), IsTruncated: aws.Bool(false)},
	}}
	client := NewBasicClientWithAPI("landing", "", "", api)
	keys, err := client.List("incoming/")
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	want := []string{"incoming/a.json", "incoming/b.json", "incoming/c.json"}
	if len(keys) != len(want) {
		t.Fatalf("unexpected keys: %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %v is %q, want %q", i, keys[i], want[i])
		}
	}
}
