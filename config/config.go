package config

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	c "github.com/neeldave10/medlaunch-data-engineer/constants"
	"github.com/neeldave10/medlaunch-data-engineer/helper"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	MainDir          = ".medlaunch"
	MainFileFullName = "config.yaml"
)

// Settings holds the recognised pipeline options.
// Precedence is: defaults < config file < ML_* environment variables < CLI flags,
// where the flags are applied by the cmd package after Load().
type Settings struct {
	Bucket                string        `mapstructure:"bucket"`
	Region                string        `mapstructure:"region"`
	InputPrefix           string        `mapstructure:"input_prefix"`
	OutputPrefix          string        `mapstructure:"output_prefix"`
	ArchivePrefix         string        `mapstructure:"archive_prefix"` // optional prefix processed inputs are moved under.
	Months                int           `mapstructure:"months"`
	FilterRule            string        `mapstructure:"filter_rule"` // optional JSON Logic rule applied after the expiry filter.
	AthenaDatabase        string        `mapstructure:"athena_database"`
	AthenaTable           string        `mapstructure:"athena_table"`
	AthenaWorkgroup       string        `mapstructure:"athena_workgroup"`
	ResultsPrefix         string        `mapstructure:"results_prefix"` // s3://bucket/prefix where the export CSV lands.
	PollInterval          time.Duration `mapstructure:"-"`
	MaxInvocationDuration time.Duration `mapstructure:"-"`
	PollIntervalStr       string        `mapstructure:"poll_interval"`
	MaxInvocationStr      string        `mapstructure:"max_invocation_duration"`
}

// NewSettings returns Settings populated with the package defaults only.
func NewSettings() *Settings {
	return &Settings{
		Months:                c.DefaultMonthsAhead,
		AthenaWorkgroup:       c.DefaultAthenaWorkgroup,
		PollInterval:          c.DefaultPollIntervalSeconds * time.Second,
		MaxInvocationDuration: c.DefaultMaxInvocationSeconds * time.Second,
	}
}

// Load builds Settings from the config file (if present) overlaid with environment variables.
// A missing config file is not an error - env vars and flags may carry everything.
func Load() (*Settings, error) {
	s := NewSettings()
	if err := s.loadFile(mustGetConfigFilePath()); err != nil {
		return nil, err
	}
	s.applyEnv()
	return s, nil
}

// loadFile reads a YAML settings file into s. Unknown keys are ignored.
func (s *Settings) loadFile(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) { // if there is no config file...
			return nil
		}
		return errors.Wrapf(err, "error reading config file %v", path)
	}
	data := make(map[string]interface{})
	if err = yaml.Unmarshal(b, data); err != nil {
		return errors.Wrapf(err, "error parsing config file %v", path)
	}
	if err = mapstructure.Decode(data, s); err != nil {
		return errors.Wrapf(err, "error decoding config file %v", path)
	}
	s.applyDurationStrings()
	return nil
}

// applyEnv overlays ML_* environment variables onto s.
func (s *Settings) applyEnv() {
	s.Bucket = helper.ReadValueFromEnvWithDefault(c.EnvVarBucket, s.Bucket)
	s.Region = helper.ReadValueFromEnvWithDefault(c.EnvVarRegion, s.Region)
	s.InputPrefix = helper.ReadValueFromEnvWithDefault(c.EnvVarInputPrefix, s.InputPrefix)
	s.OutputPrefix = helper.ReadValueFromEnvWithDefault(c.EnvVarOutputPrefix, s.OutputPrefix)
	s.ArchivePrefix = helper.ReadValueFromEnvWithDefault(c.EnvVarArchivePrefix, s.ArchivePrefix)
	s.Months = helper.ReadIntFromEnvWithDefault(c.EnvVarMonthsAhead, s.Months)
	s.FilterRule = helper.ReadValueFromEnvWithDefault(c.EnvVarFilterRule, s.FilterRule)
	s.AthenaDatabase = helper.ReadValueFromEnvWithDefault(c.EnvVarAthenaDatabase, s.AthenaDatabase)
	s.AthenaTable = helper.ReadValueFromEnvWithDefault(c.EnvVarAthenaTable, s.AthenaTable)
	s.AthenaWorkgroup = helper.ReadValueFromEnvWithDefault(c.EnvVarAthenaWorkgroup, s.AthenaWorkgroup)
	s.ResultsPrefix = helper.ReadValueFromEnvWithDefault(c.EnvVarResultsPrefix, s.ResultsPrefix)
	s.PollInterval = helper.ReadDurationFromEnvWithDefault(c.EnvVarPollInterval, s.PollInterval)
	s.MaxInvocationDuration = helper.ReadDurationFromEnvWithDefault(c.EnvVarMaxInvocation, s.MaxInvocationDuration)
}

// applyDurationStrings converts the file's duration strings into time.Duration values.
func (s *Settings) applyDurationStrings() {
	if d, err := time.ParseDuration(s.PollIntervalStr); err == nil && s.PollIntervalStr != "" {
		s.PollInterval = d
	}
	if d, err := time.ParseDuration(s.MaxInvocationStr); err == nil && s.MaxInvocationStr != "" {
		s.MaxInvocationDuration = d
	}
}
