// Package errors provides typed error values for the asap CLI.
//
// Sentinel errors let callers branch on failure kinds with errors.Is()
// instead of matching message text. Two structured types carry extra
// detail from the network layer.
//
// # Error Categories
//
//   - Input errors: bad local path or tag (ErrInvalidInput, ErrNotADirectory, ErrInvalidTag)
//   - Access errors: no ownership secret for a site (ErrNoPermission)
//   - Remote errors: the server answered with a structured error (RemoteError, ErrRemote)
//   - Transport errors: no usable response at all (TransportError, ErrTransport)
//   - Local state errors: unreadable registry (ErrRegistryCorrupt)
//   - Flow control: the user backed out of a prompt (ErrCancelled)
//
// # Usage
//
// Return sentinel errors from internal packages, wrapped with context:
//
//	return "", fmt.Errorf("%w: %s", errors.ErrNotADirectory, path)
//
// Handle them in the CLI layer:
//
//	result, err := workflows.Destroy(ctx, opts)
//	if errors.Is(err, kerrors.ErrNoPermission) {
//	    // Show user-friendly message
//	}
//
// A RemoteError may still carry a site secret issued before the server
// rejected the upload:
//
//	var remoteErr *kerrors.RemoteError
//	if errors.As(err, &remoteErr) && remoteErr.Secret != "" {
//	    // persist it
//	}
package errors
