package actions

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/ghodss/yaml"
)

// JobDefinition is the on-disk form of an action launch, accepted by the CLI
// (--job-file) and equivalent to the bodies the web API takes.
type JobDefinition struct {
	Action string               `json:"action"`
	Filter *FilterLaunchRequest `json:"filter,omitempty"`
	Export *ExportLaunchRequest `json:"export,omitempty"`
}

// loadJobFromFile reads a job definition from a .json or .yaml file.
func loadJobFromFile(jobFileName string) (*JobDefinition, error) {
	raw, err := ioutil.ReadFile(jobFileName)
	if err != nil {
		return nil, err
	}
	j := JobDefinition{}
	// Check file extension YAML or JSON.
	r := regexp.MustCompile(`.*\.(json|yaml)`)
	suffix := r.ReplaceAllString(strings.ToLower(jobFileName), `$1`)
	// Unmarshal based on file type.
	if suffix == "json" { // if the file type is json...
		err = json.Unmarshal(raw, &j)
		if err != nil {
			return nil, fmt.Errorf("error reading job JSON: unmarshal errors: %v", err)
		}
	} else if suffix == "yaml" { // else the file type is yaml...
		jobBytes, err := yaml.YAMLToJSON(raw) // http://ghodss.com/2014/the-right-way-to-handle-yaml-in-golang/
		if err != nil {
			return nil, err
		}
		err = json.Unmarshal(jobBytes, &j)
		if err != nil {
			return nil, fmt.Errorf("error reading job YAML after conversion to JSON: unmarshal errors: %v", err)
		}
	} else {
		return nil, fmt.Errorf("unable to identify type of job file by its extension. Please use .yaml or .json")
	}
	return &j, nil
}

// LoadFilterJob reads a job file and applies its filter section on top of cfg.
func LoadFilterJob(jobFileName string, cfg *FilterExpiringConfig) error {
	j, err := loadJobFromFile(jobFileName)
	if err != nil {
		return err
	}
	if j.Action != "" && j.Action != "filter" { // if the file describes some other action...
		return fmt.Errorf("job file action is %q, expected \"filter\"", j.Action)
	}
	if j.Filter == nil {
		return fmt.Errorf("job file %v has no filter section", jobFileName)
	}
	applyFilterOverrides(cfg, j.Filter)
	return nil
}

// LoadExportJob reads a job file and sets the trigger in cfg from its export section.
func LoadExportJob(jobFileName string, cfg *ExportStateCountsConfig) error {
	j, err := loadJobFromFile(jobFileName)
	if err != nil {
		return err
	}
	if j.Action != "" && j.Action != "export" { // if the file describes some other action...
		return fmt.Errorf("job file action is %q, expected \"export\"", j.Action)
	}
	if j.Export == nil {
		return fmt.Errorf("job file %v has no export section", jobFileName)
	}
	cfg.Trigger = Trigger{
		SourceBucket: j.Export.SourceBucket,
		SourceKey:    j.Export.SourceKey,
		EventID:      j.Export.EventID,
	}
	return nil
}
