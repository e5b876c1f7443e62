package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/asap-static/asap/internal/errors"
	"github.com/asap-static/asap/internal/ui"
	"github.com/asap-static/asap/internal/workflows"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <tag>",
	Short: "Delete a site you deployed",
	Long: `Deletes the site served at https://<tag>.asap-static.site.

The site secret stored in ~/.asap proves you own the site. When no secret is
stored for the tag, nothing is sent to the hosting service.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		Logger.Infof("Starting destroy command for %s", tag)

		spinner, cleanup := startSpinner(fmt.Sprintf("Destroying %s...", ui.Tag.Sprint(tag)), verbose)
		defer cleanup()

		result, err := workflows.Destroy(commandContext(cmd), workflows.DestroyOptions{
			Tag:      tag,
			Client:   newClient(),
			Registry: openRegistry(),
			Domain:   activeConfig().HostingDomain,
			History:  openHistory(),
			Logger:   Logger,
		})
		if err != nil {
			cleanup()
			msg, hints := formatDestroyError(err, tag)
			return reportFailure(msg, hints...)
		}

		spinner.FinalMSG = ui.Done("Destroyed " + ui.Tag.Sprint(result.Tag))
		if result.Message != "" {
			spinner.FinalMSG += "\n  " + ui.Muted.Sprint(result.Message)
		}
		return nil
	},
}

// formatDestroyError returns the failure line and any follow-up hints.
func formatDestroyError(err error, tag string) (string, []string) {
	switch {
	case errors.Is(err, kerrors.ErrNoPermission):
		return "You don't have permission to delete this site!",
			[]string{"No secret for " + ui.Tag.Sprint(tag) + " is stored in " + ui.Path.Sprint(openRegistry().Path())}

	case errors.Is(err, kerrors.ErrRemote):
		return err.Error(), nil

	case errors.Is(err, kerrors.ErrTransport):
		return "Could not reach " + activeConfig().APIURL + ": " + err.Error(), nil

	default:
		return err.Error(), nil
	}
}
