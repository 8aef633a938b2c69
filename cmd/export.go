package cmd

import (
	"github.com/neeldave10/medlaunch-data-engineer/actions"
	"github.com/spf13/cobra"
)

const exportArgsDefinitionTxt = "<source-bucket> <source-key>"

var exportCmd = &cobra.Command{
	Use:   "export " + exportArgsDefinitionTxt,
	Short: "Export per-state counts of currently accredited facilities via Athena",
	Long: `Submit the state-counts query to Athena as an UNLOAD and poll it to completion.
The source bucket and key name the object the export is attributed to; together
with the event id they form the idempotency token, so redelivered triggers
resume the in-flight job instead of starting a second one. A completion marker
is written next to the query output when the job reaches a terminal state.`,
	Args: getTriggerFromArgsFunc(&exportCfg.Trigger, &exportJobFile),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportJobFile != "" { // if a job file was supplied it carries the trigger...
			if err := actions.LoadExportJob(exportJobFile, &exportCfg); err != nil {
				return err
			}
		}
		exportCfg.StackDumpOnPanic = stackDumpOnPanic
		result, err := actions.RunExportStateCounts(&exportCfg)
		if result != nil { // print the outcome even when the run failed or suspended...
			_ = printResultJSON(result)
		}
		return err
	},
}

var (
	exportCfg     actions.ExportStateCountsConfig
	exportJobFile string
	pollInterval  string
	maxInvocation string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().SortFlags = false
	exportCmd.SilenceUsage = true
	switches.addFlag(exportCmd, &exportCfg.Region, "region", settings.Region, false, "")
	switches.addFlag(exportCmd, &exportCfg.AthenaDatabase, "athena-database", settings.AthenaDatabase, false, "")
	switches.addFlag(exportCmd, &exportCfg.AthenaTable, "athena-table", settings.AthenaTable, false, "")
	switches.addFlag(exportCmd, &exportCfg.AthenaWorkgroup, "athena-workgroup", settings.AthenaWorkgroup, false, "")
	switches.addFlag(exportCmd, &exportCfg.ResultsPrefix, "results-prefix", settings.ResultsPrefix, false, "")
	switches.addFlag(exportCmd, &pollInterval, "poll-interval", settings.PollInterval.String(), false, "")
	switches.addFlag(exportCmd, &maxInvocation, "max-invocation-duration", settings.MaxInvocationDuration.String(), false, "")
	switches.addFlag(exportCmd, &exportCfg.Trigger.EventID, "event-id", "", false, "")
	switches.addFlag(exportCmd, &exportCfg.LogLevel, "log-level", "info", false, "")
	switches.addFlag(exportCmd, &exportJobFile, "job-file", "", false, "")
	exportCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		// Durations arrive as strings from flags or env; parse them here.
		var err error
		if exportCfg.PollInterval, err = parseDurationFlag("poll-interval", pollInterval); err != nil {
			return err
		}
		exportCfg.MaxInvocationDuration, err = parseDurationFlag("max-invocation-duration", maxInvocation)
		return err
	}
}
