package actions

import (
	"sync"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/rs/xid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunInfo describes one action launched via the HTTP API.
type RunInfo struct {
	ID        string      `json:"runId"`
	Action    string      `json:"action"`
	StartedAt time.Time   `json:"startedAt"`
	Status    RunStatus   `json:"status"`
	Message   string      `json:"message,omitempty"`
	Result    interface{} `json:"result,omitempty"`
}

// RunRegistry is a mutex-protected, insertion-ordered map of runs keyed by
// run id, so /runs lists them in launch order.
type RunRegistry struct {
	sync.Mutex
	runs *om.OrderedMap
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runs: om.NewOrderedMap()}
}

// Add registers a new running action and returns its generated run id.
func (r *RunRegistry) Add(action string) string {
	r.Lock()
	defer r.Unlock()
	id := xid.New().String()
	r.runs.Set(id, &RunInfo{
		ID:        id,
		Action:    action,
		StartedAt: time.Now().UTC(),
		Status:    RunStatusRunning,
	})
	return id
}

// Get returns a copy of the run with the given id.
func (r *RunRegistry) Get(id string) (RunInfo, bool) {
	r.Lock()
	defer r.Unlock()
	v, ok := r.runs.Get(id)
	if !ok {
		return RunInfo{}, false
	}
	return *(v.(*RunInfo)), true
}

// List returns copies of all runs in insertion order.
func (r *RunRegistry) List() []RunInfo {
	r.Lock()
	defer r.Unlock()
	runs := make([]RunInfo, 0, r.runs.Len())
	iter := r.runs.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() { // for each registered run in launch order...
		runs = append(runs, *(kv.Value.(*RunInfo)))
	}
	return runs
}

// Complete marks the run done and attaches its result.
func (r *RunRegistry) Complete(id string, result interface{}) {
	r.setOutcome(id, RunStatusCompleted, "", result)
}

// Fail marks the run failed and records the error text. A partial result may
// still be attached (e.g. a suspended export carries its job id).
func (r *RunRegistry) Fail(id string, message string, result interface{}) {
	r.setOutcome(id, RunStatusFailed, message, result)
}

func (r *RunRegistry) setOutcome(id string, status RunStatus, message string, result interface{}) {
	r.Lock()
	defer r.Unlock()
	v, ok := r.runs.Get(id)
	if !ok { // if the run was never registered there is nothing to update...
		return
	}
	info := v.(*RunInfo)
	info.Status = status
	info.Message = message
	info.Result = result
}
