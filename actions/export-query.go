package actions

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/neeldave10/medlaunch-data-engineer/aws/s3"
)

// buildStateCountsSQL renders the UNLOAD query that writes the
// accredited-facility counts per state as comma-separated text.
//
// The inner aggregate counts DISTINCT facility ids having at least one
// accreditation still valid as of today ("accredited now"); this predicate is
// deliberately different from the filter's expiring-soon horizon. The UNION
// with _order 0 fabricates the header row, and the outer ORDER BY keeps it
// first with the data rows following in ascending state order.
func buildStateCountsSQL(database, table, todayStr string) string {
	return strings.TrimSpace(fmt.Sprintf(`
UNLOAD (
  SELECT *
  FROM (
    SELECT 0 AS _order, 'state' AS state, 'accredited_facilities' AS accredited_facilities
    UNION ALL
    SELECT 1 AS _order, state, CAST(accredited_facilities AS VARCHAR)
    FROM (
      SELECT r.location.state AS state,
             COUNT(DISTINCT r.facility_id) AS accredited_facilities
      FROM %v.%v r
      CROSS JOIN UNNEST(r.accreditations) AS t(a)
      WHERE CAST(a.valid_until AS DATE) >= DATE '%v'
      GROUP BY r.location.state
    ) s
  ) out
  ORDER BY _order, state
)
TO '{OUTPUT}'
WITH (format='TEXTFILE', field_delimiter=',', compression='NONE')
`, database, table, todayStr))
}

// substituteOutputLocation splices the destination into the query template.
func substituteOutputLocation(sql, outputLocation string) string {
	return strings.Replace(sql, "{OUTPUT}", strings.TrimRight(outputLocation, "/")+"/", 1)
}

// resultsPrefixForObject derives the per-trigger destination under the
// configured results prefix:
//   s3://<results-bucket>/<results-prefix>/<src-bucket>/<urlencoded-key>/<YYYY-MM-DD>/
// The source key is URL-encoded so slashes in it cannot fan out into
// sub-directories, and the date partition means a retry on a later day is a
// new logical export.
func resultsPrefixForObject(results s3.AwsS3Bucket, srcBucket, srcKey, todayStr string) (keyPrefix string, outputLocation string) {
	encKey := url.QueryEscape(srcKey)
	parts := []string{}
	if results.Prefix != "" {
		parts = append(parts, strings.Trim(results.Prefix, "/"))
	}
	parts = append(parts, srcBucket, encKey, todayStr)
	keyPrefix = strings.Join(parts, "/") + "/"
	outputLocation = fmt.Sprintf("s3://%v/%v", results.Name, keyPrefix)
	return
}

// idempotencyToken derives the stable token for one logical trigger: the same
// bucket, key, event id and query text always hash to the same token, so a
// crashed-and-redelivered invocation resubmits with the token the engine has
// already seen and no second job starts.
func idempotencyToken(trigger Trigger, sql string) string {
	h := sha256.Sum256([]byte(trigger.SourceBucket + "|" + trigger.SourceKey + "|" + trigger.EventID + "|" + sql))
	return hex.EncodeToString(h[:])
}
