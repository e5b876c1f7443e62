package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asap-static/asap/internal/configs"
	"github.com/asap-static/asap/internal/ui"
)

var (
	configShowJSON  bool
	configInitForce bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// resetConfigCommandState resets the config commands' global state for testing.
func resetConfigCommandState() {
	configShowJSON = false
	configInitForce = false
	configLoadErr = nil
}

var configCmd = &cobra.Command{
	Use:               "config",
	Short:             "Inspect or create the asap configuration file",
	PersistentPreRunE: setupConfigCommand,
}

// configLoadErr holds the error from loading a broken config file.
var configLoadErr error

// setupConfigCommand loads the config like setupCommand but falls back to
// the defaults when the file is broken, so that it can be inspected and
// rewritten.
func setupConfigCommand(cmd *cobra.Command, args []string) error {
	setupLogger(cmd)

	loaded, err := configs.LoadConfig()
	if err != nil {
		configLoadErr = err
		fmt.Fprintln(os.Stderr, ui.Warning.Sprint("⚠ ")+err.Error())
		config = configs.Defaults()
		return nil
	}
	config = loaded
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the configuration asap is using after applying the config file
and ASAP_* environment overrides.

Examples:
  asap config show
  asap config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := activeConfig()

		if configShowJSON {
			shown := map[string]interface{}{
				"config_path":    configs.UserAsapSettings.ConfigPath,
				"registry_path":  configs.RegistryPath(),
				"api_url":        cfg.APIURL,
				"hosting_domain": cfg.HostingDomain,
				"timeout":        cfg.Timeout,
				"retry_max":      cfg.Retries(),
				"exclude":        cfg.Exclude,
			}
			if configLoadErr != nil {
				shown["error"] = configLoadErr.Error()
			}
			data, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config to JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("%-15s %s\n", "config file:", ui.Path.Sprint(configs.UserAsapSettings.ConfigPath))
		fmt.Printf("%-15s %s\n", "registry:", ui.Path.Sprint(configs.RegistryPath()))
		fmt.Printf("%-15s %s\n", "api_url:", cfg.APIURL)
		fmt.Printf("%-15s %s\n", "hosting_domain:", cfg.HostingDomain)
		fmt.Printf("%-15s %s\n", "timeout:", cfg.Timeout)
		fmt.Printf("%-15s %d\n", "retry_max:", cfg.Retries())
		fmt.Printf("%-15s %v\n", "exclude:", cfg.Exclude)
		if configLoadErr != nil {
			fmt.Println(ui.Hint("The config file could not be used, so defaults are shown. Run " +
				ui.Code.Sprint("asap config init --force") + " to replace it"))
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configs.UserAsapSettings.ConfigPath
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return reportFailure("Config file already exists at "+path,
				"Run "+ui.Code.Sprint("asap config init --force")+" to overwrite it")
		}

		Logger.Infof("Writing default config to %s", path)
		if err := configs.SaveConfig(configs.Defaults()); err != nil {
			return reportFailure(err.Error())
		}

		fmt.Println(ui.Done("Wrote " + ui.Path.Sprint(path)))
		return nil
	},
}
