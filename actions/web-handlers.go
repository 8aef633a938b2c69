package actions

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"
	c "github.com/neeldave10/medlaunch-data-engineer/constants"
	"github.com/neeldave10/medlaunch-data-engineer/logger"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseRunList struct {
	Status  WebServerResponse `json:"status"`
	RunList []RunInfo         `json:"runs"`
}

type ResponseRunStatus struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message,omitempty"`
	Run     *RunInfo          `json:"run,omitempty"`
}

type ResponseLaunch struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId,omitempty"`
}

// FilterLaunchRequest is the POST /filter body. Fields override the server's
// template filter config for this run only.
type FilterLaunchRequest struct {
	Bucket        string `json:"bucket,omitempty"`
	InputPrefix   string `json:"inputPrefix,omitempty"`
	OutputPrefix  string `json:"outputPrefix,omitempty"`
	ArchivePrefix string `json:"archivePrefix,omitempty"`
	OnlyKey       string `json:"onlyKey,omitempty"`
	Months        int    `json:"months,omitempty"`
	FilterRule    string `json:"filterRule,omitempty"`
}

// ExportLaunchRequest is the POST /export body naming the source object the
// export run is attributed to.
type ExportLaunchRequest struct {
	SourceBucket string `json:"sourceBucket"`
	SourceKey    string `json:"sourceKey"`
	EventID      string `json:"eventId,omitempty"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		chanStop <- "stop"
		log.Info("Stop signal sent")
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerFilterLaunch starts a filter run in the background and responds
// with the run id immediately; poll /runs/{runId} for the outcome.
func GetHandlerFilterLaunch(log logger.Logger, registry *RunRegistry, template *FilterExpiringConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := ioutil.ReadAll(r.Body)
		req := FilterLaunchRequest{}
		err := json.Unmarshal(b, &req)
		if err != nil {
			logAndRespond(log, err, w,
				ResponseLaunch{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err)})
			return
		}
		cfg := FilterExpiringConfig{}
		if template != nil { // copy the template; each run gets its own config...
			cfg = *template
		}
		cfg.Log = log
		applyFilterOverrides(&cfg, &req)
		id := registry.Add(c.ActionCommandFilter)
		go func() {
			result, err := RunFilterExpiring(&cfg)
			if err != nil { // if the run ended badly...
				log.Error("filter run ", id, " failed: ", err)
				registry.Fail(id, err.Error(), result)
				return
			}
			registry.Complete(id, result)
		}()
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseLaunch{Status: Okay, Message: "filter launched", RunId: id})
	}
}

// GetHandlerExportLaunch starts an export run in the background and responds
// with the run id immediately.
func GetHandlerExportLaunch(log logger.Logger, registry *RunRegistry, template *ExportStateCountsConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := ioutil.ReadAll(r.Body)
		req := ExportLaunchRequest{}
		err := json.Unmarshal(b, &req)
		if err != nil {
			logAndRespond(log, err, w,
				ResponseLaunch{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err)})
			return
		}
		if req.SourceBucket == "" || req.SourceKey == "" {
			logAndRespond(log, fmt.Errorf("sourceBucket and sourceKey are required"), w,
				ResponseLaunch{Status: Error, Message: "supply sourceBucket and sourceKey"})
			return
		}
		cfg := ExportStateCountsConfig{}
		if template != nil { // copy the template; each run gets its own config...
			cfg = *template
		}
		cfg.Log = log
		cfg.Trigger = Trigger{SourceBucket: req.SourceBucket, SourceKey: req.SourceKey, EventID: req.EventID}
		id := registry.Add(c.ActionCommandExport)
		go func() {
			result, err := RunExportStateCounts(&cfg)
			if err != nil { // if the run failed or suspended...
				log.Error("export run ", id, " ended: ", err)
				registry.Fail(id, err.Error(), result)
				return
			}
			registry.Complete(id, result)
		}()
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseLaunch{Status: Okay, Message: "export launched", RunId: id})
	}
}

func GetHandlerRunList(log logger.Logger, registry *RunRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunList{Status: Okay, RunList: registry.List()})
	}
}

func GetHandlerRunStatus(log logger.Logger, registry *RunRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id := vars["runId"]
		run, ok := registry.Get(id)
		if ok { // if the run exists...
			w.WriteHeader(http.StatusOK)
			respond(log, w, ResponseRunStatus{Status: Okay, Run: &run})
		} else { // else the run doesn't exist...
			w.WriteHeader(http.StatusBadRequest)
			log.Info("HTTP request for status of run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
		}
	}
}

func applyFilterOverrides(cfg *FilterExpiringConfig, req *FilterLaunchRequest) {
	if req.Bucket != "" {
		cfg.Bucket = req.Bucket
	}
	if req.InputPrefix != "" {
		cfg.InputPrefix = req.InputPrefix
	}
	if req.OutputPrefix != "" {
		cfg.OutputPrefix = req.OutputPrefix
	}
	if req.ArchivePrefix != "" {
		cfg.ArchivePrefix = req.ArchivePrefix
	}
	if req.OnlyKey != "" {
		cfg.OnlyKey = req.OnlyKey
	}
	if req.Months != 0 {
		cfg.Months = req.Months
	}
	if req.FilterRule != "" {
		cfg.FilterRule = req.FilterRule
	}
}

// logAndRespond will log the error, write a http.StatusBadRequest and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, r interface{}) {
	log.Error(err)
	w.WriteHeader(http.StatusBadRequest)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	_, err = fmt.Fprint(w, string(j))
	if err != nil {
		log.Panic(err)
	}
}
