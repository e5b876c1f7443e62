package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/asap-static/asap/internal/errors"
	"github.com/asap-static/asap/internal/ui"
	"github.com/asap-static/asap/internal/workflows"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON array")
}

// resetListCommandState resets the list command's global state for testing.
func resetListCommandState() {
	listJSON = false
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sites you have deployed",
	Long: `Prints the URL of every site with a secret stored in ~/.asap.

Only sites deployed from this machine are listed. No request is sent to
the hosting service.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		result, err := workflows.List(commandContext(cmd), workflows.ListOptions{
			Registry: openRegistry(),
			Domain:   activeConfig().HostingDomain,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrRegistryCorrupt) {
				return reportFailure(err.Error(), "Fix or remove the registry file; its secrets are needed to destroy sites")
			}
			return reportFailure(err.Error())
		}
		Logger.Debugf("Found %d sites", len(result.Sites))

		if listJSON {
			data, err := json.MarshalIndent(result.Sites, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal sites to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(result.Sites) == 0 {
			fmt.Println("No sites deployed yet.")
			fmt.Println(ui.Hint("Run " + ui.Code.Sprint("asap deploy") + " to publish one"))
			return nil
		}

		for _, site := range result.Sites {
			fmt.Println(site.URL)
		}
		return nil
	},
}
