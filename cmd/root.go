package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/asap-static/asap/internal/configs"
	logger "github.com/asap-static/asap/internal/logging"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// config is loaded once per invocation before any command runs.
	config *configs.Config

	RootCmd = &cobra.Command{
		Use:   "asap [path]",
		Short: "asap - deploy a directory as a static site in one command.",
		Long: `asap zips a directory and publishes it as a static site at
https://<tag>.asap-static.site.

Running asap with no subcommand deploys the given directory, or the current
directory when none is given. Site secrets are kept in ~/.asap so you can
destroy your sites later.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setupCommand,
		RunE:              runDeploy,
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	addDeployFlags(RootCmd)

	RootCmd.AddCommand(deployCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(destroyCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)
}

// setupLogger builds the logger from the persistent flags.
func setupLogger(cmd *cobra.Command) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
}

// setupCommand builds the logger and loads the user configuration.
func setupCommand(cmd *cobra.Command, args []string) error {
	setupLogger(cmd)

	loaded, err := configs.LoadConfig()
	if err != nil {
		return reportFailure(err.Error())
	}
	for _, key := range loaded.UnknownKeys {
		Logger.Warnf("Unknown key %q in %s", key, configs.UserAsapSettings.ConfigPath)
	}
	config = loaded
	Logger.Debugf("Using API %s and hosting domain %s", config.APIURL, config.HostingDomain)

	return nil
}

// reportedError is returned after a failure has already been printed.
type reportedError struct {
	msg string
}

func (e *reportedError) Error() string {
	return e.msg
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	config = nil
	Logger = logger.Logger{}
	resetDeployCommandState()
	resetListCommandState()
	resetLogCommandState()
	resetConfigCommandState()
}
