package s3

import (
	"fmt"
	"net/url"
	"strings"
)

// AwsS3Bucket holds the components of a bucket/prefix target.
type AwsS3Bucket struct {
	Name   string `errorTxt:"bucket name" mandatory:"yes"`
	Prefix string `errorTxt:"bucket prefix"`
	Region string `errorTxt:"bucket region"`
}

// ParseDSN expects bucketPrefix to be of the form [s3://]<bucket>/<prefix>
// It returns an AwsS3Bucket populated with the components of bucketPrefix and the supplied region.
// If there is a parsing error it returns an error.
// The region may be empty, in which case the SDK resolves it from the environment.
func ParseDSN(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	expectedScheme := "s3"
	if !strings.Contains(bucketPrefix, "://") { // if there is no scheme, default it so url.Parse finds a host...
		bucketPrefix = expectedScheme + "://" + bucketPrefix
	}
	s3url, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("DSN failed to parse bucket name")
	}
	retval.Prefix = strings.Trim(s3url.Path, "/")
	retval.Region = region
	return
}

// URL renders the bucket back to an s3:// URL with a trailing slash.
func (d AwsS3Bucket) URL() string {
	if d.Prefix == "" {
		return fmt.Sprintf("s3://%v/", d.Name)
	}
	return fmt.Sprintf("s3://%v/%v/", d.Name, strings.Trim(d.Prefix, "/"))
}
