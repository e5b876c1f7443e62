package configs

import (
	"log"
	"os"
	"path/filepath"
)

type UserSettings struct {
	RegistryPath string
	ConfigPath   string
	HistoryPath  string
}

var UserAsapSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fall back to ~/.config when XDG_CONFIG_HOME and HOME-derived dirs are unavailable.
		configDir = filepath.Join(homeDir, ".config")
	}

	UserAsapSettings = &UserSettings{
		RegistryPath: filepath.Join(homeDir, ".asap"),
		ConfigPath:   filepath.Join(configDir, "asap", "config.toml"),
		HistoryPath:  filepath.Join(configDir, "asap", "history.jsonl"),
	}
}

// RegistryPath returns the site registry path, honouring ASAP_REGISTRY.
func RegistryPath() string {
	if p := os.Getenv("ASAP_REGISTRY"); p != "" {
		return p
	}
	return UserAsapSettings.RegistryPath
}
