// Package configs manages the user-level settings of the asap CLI.
//
// Two files live on the user's machine:
//
//   - Site registry: ~/.asap (JSON, tag -> site secret; see internal/registry)
//   - Config: <user config dir>/asap/config.toml (TOML, optional)
//
// A third file, <user config dir>/asap/history.jsonl, records past deploy
// and destroy operations (see internal/audit).
//
// # Config File
//
// Every key is optional; a missing file yields Defaults():
//
//	api_url        = "https://asap-static.site"
//	hosting_domain = "asap-static.site"
//	timeout        = "60s"
//	retry_max      = 2
//	exclude        = ["node_modules/**"]
//
// ASAP_API_URL, ASAP_HOSTING_DOMAIN and ASAP_REGISTRY override the file.
//
// # Settings
//
// UserAsapSettings holds the resolved file paths. It is initialized at
// startup from the home and user config directories and may be replaced
// in tests.
package configs
