package actions

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/neeldave10/medlaunch-data-engineer/aws/s3"
	c "github.com/neeldave10/medlaunch-data-engineer/constants"
	"github.com/neeldave10/medlaunch-data-engineer/facility"
	"github.com/neeldave10/medlaunch-data-engineer/helper"
	"github.com/neeldave10/medlaunch-data-engineer/logger"
	"github.com/pkg/errors"
)

type FilterExpiringConfig struct {
	Log              logger.Logger
	Store            s3.Client // object store collaborator; built from Bucket/Region when nil.
	Bucket           string    `errorTxt:"bucket name" mandatory:"yes"`
	Region           string    `errorTxt:"bucket region"`
	InputPrefix      string    `errorTxt:"input prefix"`
	OutputPrefix     string    `errorTxt:"output prefix" mandatory:"yes"`
	OnlyKey          string    // set by an object-created trigger to process exactly one object.
	ArchivePrefix    string    // optional prefix processed input objects are moved under afterwards.
	Months           int       `errorTxt:"months horizon" mandatory:"yes"`
	FilterRule       string    // optional JSON Logic rule applied after the expiry filter.
	LogLevel         string    `errorTxt:"log level"`
	StackDumpOnPanic bool
	Now              func() time.Time // evaluation instant; defaults to time.Now.
}

// FilterResult reports what one invocation did. Per-record decode and date
// problems are counted here, never propagated as errors.
type FilterResult struct {
	FilesScanned int      `json:"files_scanned"`
	RecordsIn    int      `json:"records_in"`
	RecordsOut   int      `json:"records_written"`
	UnitsSkipped int      `json:"units_skipped"`
	OutputKeys   []string `json:"output_keys,omitempty"`
	ArchivedKeys []string `json:"archived_keys,omitempty"`
}

// Run satisfies Runner for the cmd harnesses.
func (cfg *FilterExpiringConfig) Run() (interface{}, error) {
	return RunFilterExpiring(cfg)
}

// RunFilterExpiring reads facility objects, keeps the records with an
// accreditation expiring within the configured horizon and writes each
// object's survivors back as one NDJSON object under OutputPrefix.
//
// The output key is derived deterministically from the input key and each
// output object is written in a single put, so a retried invocation on
// identical input produces a byte-identical object (overwrite, never append)
// and no partial output can ever be observed.
func RunFilterExpiring(cfg *FilterExpiringConfig) (*FilterResult, error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to filter config supplied")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	log := cfg.Log
	if log == nil {
		log = logger.NewLogger("medlaunch", cfg.LogLevel, cfg.StackDumpOnPanic)
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	if cfg.OnlyKey == "" && cfg.InputPrefix == "" {
		return nil, errors.New("supply an input prefix to scan or a single object key")
	}
	if cfg.FilterRule != "" && !jsonlogic.IsValid(strings.NewReader(cfg.FilterRule)) {
		return nil, fmt.Errorf("invalid filter rule: %v", cfg.FilterRule)
	}
	store := cfg.Store
	if store == nil {
		store = s3.NewClient(cfg.Bucket, cfg.Region, "")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cutoff := facility.HorizonCutoff(now(), cfg.Months)
	log.Debug("filter cutoff date is ", cutoff.Format(c.TimeFormatCalendarDate))

	// Resolve the set of input keys: one object in trigger mode, else the whole prefix.
	var keys []string
	if cfg.OnlyKey != "" {
		keys = []string{cfg.OnlyKey}
	} else {
		var err error
		keys, err = store.List(cfg.InputPrefix)
		if err != nil {
			return nil, errors.Wrapf(err, "error listing s3://%v/%v", cfg.Bucket, cfg.InputPrefix)
		}
	}

	res := &FilterResult{}
	for _, key := range keys {
		res.FilesScanned++
		if err := filterOneObject(log, store, cfg, key, cutoff, res); err != nil {
			return nil, err
		}
	}
	log.Info("filter complete: files scanned=", res.FilesScanned,
		", records in=", res.RecordsIn, ", records written=", res.RecordsOut,
		", malformed units skipped=", res.UnitsSkipped)
	return res, nil
}

func filterOneObject(log logger.Logger, store s3.Client, cfg *FilterExpiringConfig, key string, cutoff time.Time, res *FilterResult) error {
	log.Info("reading s3://", cfg.Bucket, "/", key)
	data, err := store.Get(key)
	if err != nil {
		return errors.Wrapf(err, "error reading s3://%v/%v", cfg.Bucket, key)
	}
	units, skipped, err := facility.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "error decoding s3://%v/%v", cfg.Bucket, key)
	}
	res.RecordsIn += len(units)
	res.UnitsSkipped += skipped
	if skipped > 0 {
		log.Warn("skipped ", skipped, " malformed unit(s) in ", key)
	}

	// Build the whole output object in memory so the put is all-or-nothing.
	var out bytes.Buffer
	count := 0
	for _, u := range units {
		if !u.Record.ExpiresWithin(cutoff) {
			continue
		}
		if cfg.FilterRule != "" { // if the caller supplied an extra rule...
			keep, err := applyFilterRule(cfg.FilterRule, u.Raw)
			if err != nil {
				return errors.Wrapf(err, "error applying filter rule to record in %v", key)
			}
			if !keep {
				continue
			}
		}
		out.Write(u.Line())
		out.WriteByte('\n')
		count++
	}
	if count == 0 { // if nothing survived the filter there is nothing to write...
		log.Info("no expiring records in ", key)
		return archiveInput(log, store, cfg, key, res)
	}

	outKey := filteredOutputKey(cfg.OutputPrefix, key)
	if err = store.Put(outKey, out.Bytes(), c.ContentTypeNdjson); err != nil {
		return errors.Wrapf(err, "error writing s3://%v/%v", cfg.Bucket, outKey)
	}
	log.Info("wrote ", count, " record(s) to s3://", cfg.Bucket, "/", outKey)
	res.RecordsOut += count
	res.OutputKeys = append(res.OutputKeys, outKey)
	return archiveInput(log, store, cfg, key, res)
}

// archiveInput moves a processed input object under ArchivePrefix so a later
// prefix scan doesn't pick it up again. Archival is off unless configured.
func archiveInput(log logger.Logger, store s3.Client, cfg *FilterExpiringConfig, key string, res *FilterResult) error {
	if cfg.ArchivePrefix == "" { // if archival is not configured the input stays where it is...
		return nil
	}
	dst := strings.TrimRight(cfg.ArchivePrefix, "/") + "/" + path.Base(key)
	if err := store.Move(key, dst); err != nil {
		return errors.Wrapf(err, "error archiving s3://%v/%v", cfg.Bucket, key)
	}
	log.Info("archived input to s3://", cfg.Bucket, "/", dst)
	res.ArchivedKeys = append(res.ArchivedKeys, dst)
	return nil
}

// filteredOutputKey derives the deterministic destination key for an input key:
// same base name, suffixed, under the output prefix.
// "incoming/facilities-2024.json" -> "<outputPrefix>/facilities-2024_filtered.ndjson".
func filteredOutputKey(outputPrefix, inputKey string) string {
	base := helper.BaseNameNoExt(inputKey)
	return strings.TrimRight(outputPrefix, "/") + "/" + base + c.FilteredFileNameSuffix + "." + c.FilteredFileNameExt
}

// applyFilterRule evaluates a JSON Logic rule against one raw record.
// The caller has validated the rule already.
func applyFilterRule(rule string, raw []byte) (bool, error) {
	var result bytes.Buffer
	if err := jsonlogic.Apply(strings.NewReader(rule), bytes.NewReader(raw), &result); err != nil {
		return false, fmt.Errorf("error applying JSON logic: %v", err)
	}
	return strings.TrimSpace(result.String()) == "true", nil
}
