package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/neeldave10/medlaunch-data-engineer/actions"
	"github.com/neeldave10/medlaunch-data-engineer/config"
	c "github.com/neeldave10/medlaunch-data-engineer/constants"
	"github.com/neeldave10/medlaunch-data-engineer/helper"
	"github.com/neeldave10/medlaunch-data-engineer/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set before other init() functions configure
// Cobra, so flag defaults can be sourced from the environment instead of CLI args.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(c.EnvVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
	}
}

var (
	twelveFactorMode bool // true if os env var c.EnvVarTwelveFactorMode is set
	lambdaMode       bool // true if c.EnvVarTwelveFactorMode is set to "lambda"
)

// twelveFactorAction binds a command name to a runner. The trigger identifies
// the source object being processed (empty in prefix-scan filter runs) and
// budget caps how long the invocation may poll before suspending.
type twelveFactorAction struct {
	runnerFunc func(log logger.Logger, settings *config.Settings, trigger actions.Trigger, budget time.Duration) error
}

var twelveFactorActions = map[string]twelveFactorAction{
	c.ActionCommandFilter: {runnerFunc: runFilter12Factor},
	c.ActionCommandExport: {runnerFunc: runExport12Factor},
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(c.EnvVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag.
	stackDumpOnPanic = helper.GetTrueFalseStringAsBool(os.Getenv(c.EnvVarStackDump))
	log := logger.NewLogger("medlaunch", logLevel, stackDumpOnPanic)
	log.Info("Medlaunch pipeline is running in 12 Factor mode...")
	settings, err := config.Load()
	if err != nil {
		log.Error(err.Error())
		return err
	}
	command := helper.ReadValueFromEnvWithDefault(c.EnvVarCommand, "")
	a, ok := acts[command]
	if !ok {
		err = fmt.Errorf("invalid command %q in %v (use %q or %q)",
			command, c.EnvVarCommand, c.ActionCommandFilter, c.ActionCommandExport)
		log.Error(err.Error())
		return err
	}
	// The trigger identity comes from the environment when there is no S3 event.
	trigger := actions.Trigger{
		SourceBucket: os.Getenv(c.EnvVarSourceBucket),
		SourceKey:    os.Getenv(c.EnvVarSourceKey),
		EventID:      os.Getenv(c.EnvVarEventID),
	}
	err = a.runnerFunc(log, settings, trigger, settings.MaxInvocationDuration)
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}

// lambdaHandler is the entry point when the tool runs as an AWS Lambda
// function behind S3 object-created notifications. One handler serves both
// actions; c.EnvVarCommand selects which.
func lambdaHandler(ctx context.Context, e events.S3Event) error {
	logLevel := helper.ReadValueFromEnvWithDefault(c.EnvVarLogLevel, "info")
	stackDumpOnPanic = helper.GetTrueFalseStringAsBool(os.Getenv(c.EnvVarStackDump))
	log := logger.NewLogger("medlaunch", logLevel, stackDumpOnPanic)
	settings, err := config.Load()
	if err != nil {
		log.Error(err.Error())
		return err
	}
	command := helper.ReadValueFromEnvWithDefault(c.EnvVarCommand, c.ActionCommandFilter)
	a, ok := twelveFactorActions[command]
	if !ok {
		err = fmt.Errorf("invalid command %q in %v", command, c.EnvVarCommand)
		log.Error(err.Error())
		return err
	}
	// Prefer the runtime's own deadline over the configured budget so polling
	// suspends before the platform kills the invocation.
	budget := settings.MaxInvocationDuration
	if deadline, ok := ctx.Deadline(); ok {
		budget = time.Until(deadline)
	}
	triggers := actions.TriggersFromS3Event(e)
	if len(triggers) == 0 { // if the event carried nothing useful...
		log.Warn("event contained no S3 object records; nothing to do")
		return nil
	}
	for _, trigger := range triggers { // for each new object in the event...
		if err := a.runnerFunc(log, settings, trigger, budget); err != nil {
			return err
		}
	}
	return nil
}

func runFilter12Factor(log logger.Logger, settings *config.Settings, trigger actions.Trigger, budget time.Duration) error {
	cfg := filterConfigFromSettings(settings)
	cfg.Log = log
	if trigger.SourceBucket != "" { // if an event names the bucket it wins over config...
		cfg.Bucket = trigger.SourceBucket
	}
	cfg.OnlyKey = trigger.SourceKey
	_, err := actions.RunFilterExpiring(&cfg)
	return err
}

func runExport12Factor(log logger.Logger, settings *config.Settings, trigger actions.Trigger, budget time.Duration) error {
	cfg := exportConfigFromSettings(settings)
	cfg.Log = log
	cfg.Trigger = trigger
	cfg.MaxInvocationDuration = budget
	_, err := actions.RunExportStateCounts(&cfg)
	return err
}

// filterConfigFromSettings maps the layered settings onto a filter action config.
func filterConfigFromSettings(s *config.Settings) actions.FilterExpiringConfig {
	return actions.FilterExpiringConfig{
		Bucket:           s.Bucket,
		Region:           s.Region,
		InputPrefix:      s.InputPrefix,
		OutputPrefix:     s.OutputPrefix,
		ArchivePrefix:    s.ArchivePrefix,
		Months:           s.Months,
		FilterRule:       s.FilterRule,
		StackDumpOnPanic: stackDumpOnPanic,
	}
}

// exportConfigFromSettings maps the layered settings onto an export action config.
func exportConfigFromSettings(s *config.Settings) actions.ExportStateCountsConfig {
	return actions.ExportStateCountsConfig{
		Region:                s.Region,
		AthenaDatabase:        s.AthenaDatabase,
		AthenaTable:           s.AthenaTable,
		AthenaWorkgroup:       s.AthenaWorkgroup,
		ResultsPrefix:         s.ResultsPrefix,
		PollInterval:          s.PollInterval,
		MaxInvocationDuration: s.MaxInvocationDuration,
		StackDumpOnPanic:      stackDumpOnPanic,
	}
}
