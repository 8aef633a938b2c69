package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/neeldave10/medlaunch-data-engineer/actions"
	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Write facility records with accreditations expiring soon to filtered NDJSON objects",
	Long: `Read raw facility JSON objects from S3, keep the records with at least one
accreditation expiring within the configured horizon and write each object's
survivors back as one NDJSON object. Records with unparseable dates are kept
out; malformed units are skipped and counted, never fatal.
Scan a whole input prefix, or use the 'key' flag to process a single object
the way an object-created trigger would.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if filterJobFile != "" { // if a job file was supplied apply it over the flags...
			if err := actions.LoadFilterJob(filterJobFile, &filterCfg); err != nil {
				return err
			}
		}
		filterCfg.StackDumpOnPanic = stackDumpOnPanic
		result, err := actions.RunFilterExpiring(&filterCfg)
		if err != nil {
			return err
		}
		return printResultJSON(result)
	},
}

var (
	filterCfg     actions.FilterExpiringConfig
	filterJobFile string
)

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().SortFlags = false
	filterCmd.SilenceUsage = true
	switches.addFlag(filterCmd, &filterCfg.Bucket, "bucket", settings.Bucket, false, "")
	switches.addFlag(filterCmd, &filterCfg.Region, "region", settings.Region, false, "")
	switches.addFlag(filterCmd, &filterCfg.InputPrefix, "input-prefix", settings.InputPrefix, false, "")
	switches.addFlag(filterCmd, &filterCfg.OutputPrefix, "output-prefix", settings.OutputPrefix, false, "")
	switches.addFlag(filterCmd, &filterCfg.ArchivePrefix, "archive-prefix", settings.ArchivePrefix, false, "")
	switches.addFlag(filterCmd, &filterCfg.OnlyKey, "key", "", false, "")
	switches.addFlag(filterCmd, &filterCfg.Months, "months", strconv.Itoa(settings.Months), false, "")
	switches.addFlag(filterCmd, &filterCfg.FilterRule, "filter-rule", settings.FilterRule, false, "")
	switches.addFlag(filterCmd, &filterCfg.LogLevel, "log-level", "info", false, "")
	switches.addFlag(filterCmd, &filterJobFile, "job-file", "", false, "")
}

// printResultJSON renders an action result to stdout for scripting.
func printResultJSON(result interface{}) error {
	j, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(j))
	return nil
}
