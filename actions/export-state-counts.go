package actions

import (
	"encoding/json"
	"time"

	"github.com/neeldave10/medlaunch-data-engineer/aws/athena"
	"github.com/neeldave10/medlaunch-data-engineer/aws/s3"
	c "github.com/neeldave10/medlaunch-data-engineer/constants"
	"github.com/neeldave10/medlaunch-data-engineer/helper"
	"github.com/neeldave10/medlaunch-data-engineer/logger"
	"github.com/pkg/errors"
	"github.com/rs/xid"
)

type ExportStateCountsConfig struct {
	Log                   logger.Logger
	Engine                athena.Client  // query engine collaborator; built from Region when nil.
	Store                 s3.BasicClient // object store for the marker; built against the results bucket when nil.
	Trigger               Trigger
	Region                string `errorTxt:"aws region"`
	AthenaDatabase        string `errorTxt:"athena database" mandatory:"yes"`
	AthenaTable           string `errorTxt:"athena table" mandatory:"yes"`
	AthenaWorkgroup       string `errorTxt:"athena workgroup"`
	ResultsPrefix         string `errorTxt:"results s3 prefix" mandatory:"yes"` // s3://bucket/prefix under which the CSV lands.
	PollInterval          time.Duration
	MaxInvocationDuration time.Duration
	LogLevel              string `errorTxt:"log level"`
	StackDumpOnPanic      bool
	Now                   func() time.Time    // defaults to time.Now.
	Sleep                 func(time.Duration) // defaults to time.Sleep.
}

// Marker is the durable proof that an export job reached a terminal state,
// written next to the engine's own output. Its presence is what resume and
// dedup decisions key off.
type Marker struct {
	SourceBucket   string `json:"source_bucket"`
	SourceKey      string `json:"source_key"`
	EventID        string `json:"event_id,omitempty"`
	Date           string `json:"date"`
	JobID          string `json:"job_id"`
	Status         string `json:"status"`
	CompletedAt    string `json:"completed_at"`
	OutputLocation string `json:"output_location"`
	FailureReason  string `json:"failure_reason,omitempty"`
}

type ExportResult struct {
	RunID          string  `json:"run_id"`
	Outcome        Outcome `json:"outcome"`
	JobID          string  `json:"job_id,omitempty"`
	OutputLocation string  `json:"output_location,omitempty"`
	MarkerKey      string  `json:"marker_key,omitempty"`
	FailureReason  string  `json:"failure_reason,omitempty"`
}

// Run satisfies Runner for the cmd harnesses.
func (cfg *ExportStateCountsConfig) Run() (interface{}, error) {
	return RunExportStateCounts(cfg)
}

// RunExportStateCounts drives one invocation of the export orchestration:
// derive the idempotency token from the trigger identity, submit the UNLOAD
// query (a redelivered trigger resubmits with the same token, which the
// engine collapses into the existing job), then poll until the job is
// terminal or the invocation budget runs out.
//
// On success the only durable side effect beyond the engine's own output is
// the completion marker. On engine failure a failure marker is written and an
// error wrapping ErrQueryFailed returned, so the external redelivery policy
// decides about retries. Running out of budget is a clean suspend: no marker,
// an error wrapping ErrBudgetExceeded, and a later invocation for the same
// trigger resumes via the token/marker rather than double-submitting.
func RunExportStateCounts(cfg *ExportStateCountsConfig) (*ExportResult, error) {
	if cfg == nil {
		return nil, errors.New("nil pointer to export config supplied")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	log := cfg.Log
	if log == nil {
		log = logger.NewLogger("medlaunch", cfg.LogLevel, cfg.StackDumpOnPanic)
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // descends into the nested Trigger too.
		return nil, err
	}
	applyExportDefaults(cfg)
	res := &ExportResult{RunID: xid.New().String()}

	results, err := s3.ParseDSN(cfg.ResultsPrefix, cfg.Region)
	if err != nil {
		return nil, errors.Wrap(err, "bad results prefix")
	}
	store := cfg.Store
	if store == nil {
		store = s3.NewBasicClient(results.Name, cfg.Region, "")
	}
	engine := cfg.Engine
	if engine == nil {
		engine = athena.NewClient(cfg.Region)
	}

	deadline := invocationDeadline(cfg.Now(), cfg.MaxInvocationDuration)
	today := cfg.Now().Format(c.TimeFormatCalendarDate)
	sql := buildStateCountsSQL(cfg.AthenaDatabase, cfg.AthenaTable, today)
	keyPrefix, outputLocation := resultsPrefixForObject(results, cfg.Trigger.SourceBucket, cfg.Trigger.SourceKey, today)
	res.OutputLocation = outputLocation
	res.MarkerKey = keyPrefix + c.MarkerFileName
	log.Info("run ", res.RunID, " triggered by s3://", cfg.Trigger.SourceBucket, "/", cfg.Trigger.SourceKey)

	// Resume check: a completion marker from an earlier invocation of this
	// trigger means the work is already done - redelivery is a no-op.
	if done, marker := completedMarkerExists(log, store, res.MarkerKey); done {
		log.Info("run ", res.RunID, " found completion marker for job ", marker.JobID, "; nothing to do")
		res.Outcome = OutcomeCompleted
		res.JobID = marker.JobID
		return res, nil
	}

	// Submit. The token makes this idempotent at the engine: a duplicate
	// submission for the same trigger returns the in-flight job instead of
	// starting a second one.
	jobID, err := engine.StartQuery(athena.Query{
		SQL:            substituteOutputLocation(sql, outputLocation),
		Database:       cfg.AthenaDatabase,
		Workgroup:      cfg.AthenaWorkgroup,
		OutputLocation: outputLocation,
		Token:          idempotencyToken(cfg.Trigger, sql),
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, errors.Wrap(err, "export submission failed")
	}
	res.JobID = jobID
	log.Info("run ", res.RunID, " submitted query ", jobID)

	// Poll with capped exponential backoff until terminal or out of budget.
	status, err := pollUntilTerminal(log, engine, cfg, jobID, deadline)
	if err != nil {
		if errors.Is(err, ErrBudgetExceeded) { // if the budget ran out mid-poll...
			res.Outcome = OutcomeSuspended
		} else { // else the engine could not be polled at all...
			res.Outcome = OutcomeFailed
		}
		return res, err
	}

	marker := Marker{
		SourceBucket:   cfg.Trigger.SourceBucket,
		SourceKey:      cfg.Trigger.SourceKey,
		EventID:        cfg.Trigger.EventID,
		Date:           today,
		JobID:          jobID,
		Status:         string(status.State),
		CompletedAt:    cfg.Now().UTC().Format(time.RFC3339),
		OutputLocation: outputLocation,
	}
	if status.State != athena.StateSucceeded { // if the engine reached a terminal failure state...
		marker.FailureReason = status.Reason
		res.Outcome = OutcomeFailed
		res.FailureReason = status.Reason
		if err = writeMarker(store, res.MarkerKey, marker); err != nil {
			log.Error("error writing failure marker: ", err)
		}
		return res, errors.Wrapf(ErrQueryFailed, "query %v state %v: %v", jobID, status.State, status.Reason)
	}

	if err = writeMarker(store, res.MarkerKey, marker); err != nil {
		res.Outcome = OutcomeFailed
		return res, errors.Wrapf(err, "query %v succeeded but the marker could not be written", jobID)
	}
	log.Info("run ", res.RunID, " completed: query ", jobID, " output at ", outputLocation)
	res.Outcome = OutcomeCompleted
	return res, nil
}

func applyExportDefaults(cfg *ExportStateCountsConfig) {
	if cfg.AthenaWorkgroup == "" {
		cfg.AthenaWorkgroup = c.DefaultAthenaWorkgroup
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = c.DefaultPollIntervalSeconds * time.Second
	}
	if cfg.MaxInvocationDuration <= 0 {
		cfg.MaxInvocationDuration = c.DefaultMaxInvocationSeconds * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
}

// invocationDeadline leaves headroom below the wall-clock budget so the
// invocation suspends itself instead of being killed mid-poll.
func invocationDeadline(now time.Time, budget time.Duration) time.Time {
	headroom := c.InvocationDeadlineHeadroomSec * time.Second
	if budget > 2*headroom {
		budget -= headroom
	}
	return now.Add(budget)
}

// pollUntilTerminal polls the engine on a backoff interval bounded by deadline.
// It returns the terminal status, or an error wrapping ErrBudgetExceeded when
// the deadline passes first.
func pollUntilTerminal(log logger.Logger, engine athena.Client, cfg *ExportStateCountsConfig, jobID string, deadline time.Time) (athena.Status, error) {
	delay := cfg.PollInterval
	maxDelay := time.Duration(c.PollIntervalMaxSeconds) * time.Second
	for {
		status, err := engine.GetStatus(jobID)
		if err != nil {
			return athena.Status{}, errors.Wrapf(err, "error polling query %v", jobID)
		}
		if status.State.IsTerminal() {
			return status, nil
		}
		if !cfg.Now().Add(delay).Before(deadline) { // if sleeping again would blow the budget...
			log.Warn("suspending before budget is exhausted; query ", jobID, " still ", status.State,
				"; a redelivered trigger will resume polling")
			return athena.Status{}, errors.Wrapf(ErrBudgetExceeded, "query %v still %v", jobID, status.State)
		}
		log.Debug("query ", jobID, " is ", status.State, "; next poll in ", delay)
		cfg.Sleep(delay)
		delay = time.Duration(float64(delay) * c.PollIntervalBackoffFactor)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// completedMarkerExists checks for the marker with a head request before
// fetching and parsing it; only a marker recording success short-circuits
// the invocation.
func completedMarkerExists(log logger.Logger, store s3.BasicClient, markerKey string) (bool, Marker) {
	var m Marker
	ok, err := store.Exists(markerKey)
	if err != nil || !ok { // if there is no marker (or we can't tell) we just submit - the token dedups...
		return false, m
	}
	data, err := store.Get(markerKey)
	if err != nil {
		log.Warn("marker at ", markerKey, " exists but could not be read: ", err)
		return false, m
	}
	if err = json.Unmarshal(data, &m); err != nil {
		log.Warn("ignoring unreadable marker at ", markerKey, ": ", err)
		return false, m
	}
	return m.Status == string(athena.StateSucceeded), m
}

func writeMarker(store s3.BasicClient, markerKey string, m Marker) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return store.Put(markerKey, b, c.ContentTypeJson)
}
