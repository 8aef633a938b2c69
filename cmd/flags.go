package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/neeldave10/medlaunch-data-engineer/actions"
	"github.com/neeldave10/medlaunch-data-engineer/config"
	"github.com/neeldave10/medlaunch-data-engineer/constants"
	"github.com/neeldave10/medlaunch-data-engineer/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// settings supplies flag defaults from the config file and ML_* environment
// variables, so CLI flags sit at the top of the precedence chain.
var settings = loadSettingsOrDefaults()

func loadSettingsOrDefaults() *config.Settings {
	s, err := config.Load()
	if err != nil { // if the config file is unreadable carry on with defaults...
		fmt.Println("warning: ", err)
		return config.NewSettings()
	}
	return s
}

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"bucket": cliFlag{name: "bucket", shortHand: "b",
		desc: "AWS S3 bucket holding the raw facility objects \n" +
			"(set AWS environment variables for access)"},
	"region": cliFlag{name: "region", shortHand: "R",
		desc: "AWS region of the bucket and the Athena engine \n" +
			"(omit to use the SDK's resolution chain)"},
	"input-prefix": cliFlag{name: "input-prefix", shortHand: "i",
		desc: "S3 prefix to scan for facility objects when no single key is given"},
	"output-prefix": cliFlag{name: "output-prefix", shortHand: "o",
		desc: "S3 prefix under which filtered NDJSON objects are written"},
	"archive-prefix": cliFlag{name: "archive-prefix", shortHand: "A",
		desc: "Optional S3 prefix processed input objects are moved under after filtering, \n" +
			"so a rerun over the input prefix doesn't pick them up again"},
	"key": cliFlag{name: "key", shortHand: "k",
		desc: "Process exactly one object key instead of scanning the input prefix, \n" +
			"as an object-created trigger would"},
	"months": cliFlag{name: "months", shortHand: "m",
		desc: "The expiry horizon in calendar months. A record qualifies when any of its \n" +
			"accreditations has a valid_until on or before today plus this many months, \n" +
			"including dates already in the past"},
	"filter-rule": cliFlag{name: "filter-rule", shortHand: "r",
		desc: "Optional JSON Logic rule applied to each surviving record, \n" +
			"e.g. '{\"<\": [{\"var\": \"employee_count\"}, 100]}'"},
	"athena-database": cliFlag{name: "athena-database", shortHand: "D",
		desc: "Athena database holding the facility table"},
	"athena-table": cliFlag{name: "athena-table", shortHand: "T",
		desc: "Athena table of facility records to aggregate"},
	"athena-workgroup": cliFlag{name: "athena-workgroup", shortHand: "W",
		desc: "Athena workgroup to submit the query in"},
	"results-prefix": cliFlag{name: "results-prefix", shortHand: "u",
		desc: "Destination for export output and markers. Use format: s3://<bucket>[/<prefix>]"},
	"poll-interval": cliFlag{name: "poll-interval", shortHand: "p",
		desc: "Initial interval between query status polls, e.g. \"1s\" \n" +
			"(backs off up to a capped maximum)"},
	"max-invocation-duration": cliFlag{name: "max-invocation-duration", shortHand: "M",
		desc: "Wall-clock budget for one invocation, e.g. \"5m\". When polling would exceed \n" +
			"it the run suspends cleanly and a redelivered trigger resumes the same job"},
	"event-id": cliFlag{name: "event-id", shortHand: "e",
		desc: "Delivery platform's identity for the triggering event; part of the \n" +
			"idempotency token, so redeliveries of one event never double-submit"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"job-file": cliFlag{name: "job-file", shortHand: "f",
		desc: "File containing the job definition (.yaml or .json)"},
	"port": cliFlag{name: "port", shortHand: "P",
		desc: "Port to listen on"},
}

// addFlag adds a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of the equivalent
// environment variable for the supplied name, or if not set then the supplied default value is used.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue) // get the cliFlag details, with defaults taken from env or the supplied defaultValue
	desc := sw.desc + desc2                // create the full flag description for use below
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		if twelveFactorMode {
			*p = helper.GetTrueFalseStringAsBool(sw.val)
		} else {
			defaultBool := strings.ToLower(sw.val) == "true"
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment when running in
// twelveFactorMode, falling back to the supplied defaultValue.
func (f *cliFlags) getCliFlag(name string, defaultValue string) cliFlag {
	s, ok := switches[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err != nil { // if there's no value for the env var read into the switch val...
			// Apply the default.
			s.val = defaultValue
		}
	} else {
		s.val = defaultValue
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// parseDurationFlag parses a Go duration string; bare integers mean seconds
// for parity with platform timeout settings.
func parseDurationFlag(name, val string) (time.Duration, error) {
	if val == "" {
		return 0, nil
	}
	if i, err := strconv.Atoi(val); err == nil { // if the value is a bare integer...
		return time.Duration(i) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for flag %q: %v", val, name, err)
	}
	return d, nil
}

// getTriggerFromArgsFunc returns a func that cobra uses to validate we have the
// source bucket and key as positional args, unless a job file supplies them.
func getTriggerFromArgsFunc(trigger *actions.Trigger, jobFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && *jobFile != "" { // if the trigger comes from a job file...
			return nil
		}
		if len(args) != 2 {
			return errors.New("requires <source-bucket> <source-key> (or supply --job-file)")
		}
		trigger.SourceBucket = args[0]
		trigger.SourceKey = args[1]
		return nil
	}
}
