// Package workflows provides high-level orchestration for asap commands.
//
// Workflows coordinate the archive, client, registry and audit packages to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Builds the collaborators (client, registry, prompter)
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Validating the directory and tag
//   - Asking for missing values through a prompt.Prompter
//   - Performing the core operation
//   - Keeping the site registry in step with the server
//   - Recording history entries
//
// # Available Workflows
//
//   - Deploy: Archives a directory, uploads it and stores the site secret
//   - List: Returns every site in the registry with its live URL
//   - Destroy: Deletes a site using its stored secret
//   - Log: Reads and filters the local deploy/destroy history
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Destroy(ctx, opts)
//	if errors.Is(err, kerrors.ErrNoPermission) {
//	    // No secret stored for this tag; no request was sent.
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancelling it stops archiving between entries and aborts in-flight
// requests.
package workflows
