package cmd

import (
	"net"

	"github.com/neeldave10/medlaunch-data-engineer/actions"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service and listen for filter and export jobs described in JSON",
	Long: `Start a web service exposing the pipeline actions over HTTP.
POST a job to /filter or /export and poll /runs/{runId} for its outcome.
Launched runs use the configured settings unless the request body overrides them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := filterConfigFromSettings(settings)
		export := exportConfigFromSettings(settings)
		serveConfig.Filter = &filter
		serveConfig.Export = &export
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	},
}

var serveConfig = actions.WebServerConfig{
	LogLevel: "info",
	Scheme:   "http",
	Addr:     net.IP{0, 0, 0, 0},
	Port:     8080,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", "info", false, "")
}
