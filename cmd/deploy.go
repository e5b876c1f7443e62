package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/asap-static/asap/internal/archive"
	kerrors "github.com/asap-static/asap/internal/errors"
	"github.com/asap-static/asap/internal/prompt"
	"github.com/asap-static/asap/internal/ui"
	"github.com/asap-static/asap/internal/workflows"
)

var (
	deployTag           string
	deployExclude       []string
	deployYes           bool
	deployIncludeHidden bool

	// deployPrompter overrides prompt.Default in tests.
	deployPrompter prompt.Prompter
)

func init() {
	addDeployFlags(deployCmd)
}

// addDeployFlags registers the deploy flags on cmd. The root command shares
// them so that "asap ./site -t my-app" works without the subcommand.
func addDeployFlags(cmd *cobra.Command) {
	bindDeployFlags(cmd.Flags())
}

func bindDeployFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&deployTag, "tag", "t", "", "site tag (lowercase letters, digits and hyphens)")
	fs.StringSliceVar(&deployExclude, "exclude", nil, "glob of paths to leave out of the archive (repeatable)")
	fs.BoolVarP(&deployYes, "yes", "y", false, "never prompt; use the given or a generated tag")
	fs.BoolVar(&deployIncludeHidden, "include-hidden", false, "archive dot-files and dot-directories too")
}

// resetDeployCommandState resets the deploy command's global state for testing.
func resetDeployCommandState() {
	deployTag = ""
	deployExclude = nil
	deployYes = false
	deployIncludeHidden = false
	deployPrompter = nil
}

var deployCmd = &cobra.Command{
	Use:   "deploy [path]",
	Short: "Deploy a directory as a static site",
	Long: `Zips a directory and uploads it to the hosting service.

Hidden files and directories (any path segment starting with '.') are left
out. The site secret returned by the server is stored in ~/.asap so the site
can be destroyed later.

Examples:
  asap deploy                      # Deploy the current directory
  asap deploy ./public -t my-app   # Deploy ./public as my-app
  asap ./public                    # Same, without the subcommand
  asap deploy --yes                # Never prompt, generate a tag`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting deploy command")

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	cfg := activeConfig()

	prompter := deployPrompter
	if prompter == nil {
		prompter = prompt.Default(deployYes)
	}

	// The spinner starts only after every prompt has been answered.
	var spin *spinner.Spinner
	stopSpinner := func() {}

	opts := workflows.DeployOptions{
		Path:     path,
		Tag:      deployTag,
		Confirm:  path == "" && !deployYes,
		Prompter: prompter,
		Archiver: &archive.Archiver{
			Exclude:       append(append([]string{}, cfg.Exclude...), deployExclude...),
			IncludeHidden: deployIncludeHidden,
		},
		Client:   newClient(),
		Registry: openRegistry(),
		Domain:   cfg.HostingDomain,
		History:  openHistory(),
		Logger:   Logger,
		Started: func(dir, tag string) {
			Logger.Debugf("Deploying %s as %s", dir, tag)
			spin, stopSpinner = startSpinner(fmt.Sprintf("Deploying %s...", ui.Tag.Sprint(tag)), verbose)
		},
	}

	result, err := workflows.Deploy(commandContext(cmd), opts)
	if err != nil {
		stopSpinner()
		if errors.Is(err, kerrors.ErrCancelled) {
			fmt.Println("Cancelled, nothing was deployed.")
			return nil
		}
		msg, hints := formatDeployError(err)
		return reportFailure(msg, hints...)
	}

	Logger.Infof("Uploaded %d files (%d bytes)", len(result.Files), result.ArchiveBytes)
	finalMsg := ui.Done("Deployed to " + ui.URL.Sprint(result.URL))
	if result.Message != "" {
		finalMsg += "\n  " + ui.Muted.Sprint(result.Message)
	}
	if spin != nil {
		spin.FinalMSG = finalMsg
	} else {
		fmt.Println(finalMsg)
	}
	stopSpinner()

	if !result.SecretStored {
		Logger.Infof("No new site secret was issued for %s", result.Tag)
	}
	return nil
}

// formatDeployError returns the failure line and any follow-up hints.
func formatDeployError(err error) (string, []string) {
	var remoteErr *kerrors.RemoteError
	switch {
	case errors.Is(err, kerrors.ErrInvalidTag):
		return err.Error(), []string{"Tags may only contain lowercase letters, digits and hyphens"}

	case errors.Is(err, kerrors.ErrInvalidInput):
		return err.Error(), nil

	case errors.Is(err, kerrors.ErrRegistryCorrupt):
		return err.Error(), []string{"Fix or remove the registry file; its secrets are needed to destroy sites"}

	case errors.As(err, &remoteErr):
		if remoteErr != err {
			// The secret could not be saved; show both failures.
			return err.Error(), nil
		}
		if remoteErr.Secret != "" {
			return remoteErr.Message, []string{"The site secret was still saved, so you can run " + ui.Code.Sprint("asap destroy <tag>")}
		}
		return remoteErr.Message, nil

	case errors.Is(err, kerrors.ErrTransport):
		return "Could not reach " + activeConfig().APIURL + ": " + err.Error(), nil

	default:
		return err.Error(), nil
	}
}

// commandContext returns the command's context, or Background when the
// command was run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
