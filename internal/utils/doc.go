// Package utils provides small shared helpers for the asap CLI.
//
// # Tag Utilities
//
//   - ValidateTag / IsValidTag: enforce ^[a-z0-9-]+$ on site tags
//   - SanitizeTag: turn free text into a usable tag suggestion
//   - GenerateTag: three random hyphen-joined words
//   - SiteURL: https://<tag>.<hosting-domain>
//
// # Filesystem Utilities
//
//   - ValidateDirectory: resolve and check a deploy directory
//   - IsHiddenPath: detect dot-prefixed path segments
//
// # Terminal Utilities
//
//   - IsTerminal / IsOutputTerminal: decide whether prompts and spinners make sense
package utils
