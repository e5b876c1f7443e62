package errors

import (
	"errors"
	"fmt"
)

// Input errors indicate a bad value supplied locally by the user.
var (
	// ErrInvalidInput indicates a local path or value failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotADirectory indicates the deploy path exists but is not a directory.
	ErrNotADirectory = fmt.Errorf("%w: must supply a directory", ErrInvalidInput)

	// ErrInvalidTag indicates a site tag does not follow the tag rules.
	ErrInvalidTag = fmt.Errorf("%w: invalid tag", ErrInvalidInput)
)

// Access errors indicate the local process cannot prove ownership of a site.
var (
	// ErrNoPermission indicates there is no secret for the tag in the registry.
	ErrNoPermission = errors.New("you don't have permission to delete this site")
)

// Network errors are matched by the structured types below.
var (
	// ErrRemote matches any *RemoteError.
	ErrRemote = errors.New("remote service returned an error")

	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("request to remote service failed")
)

// Local state errors.
var (
	// ErrRegistryCorrupt indicates the site registry file is not valid JSON.
	ErrRegistryCorrupt = errors.New("site registry is corrupt")
)

// Flow control errors.
var (
	// ErrCancelled indicates the user explicitly aborted an interactive step.
	ErrCancelled = errors.New("cancelled by user")
)

// RemoteError is a structured error response from the hosting service.
type RemoteError struct {
	// Status is the HTTP status code of the response.
	Status int

	// Message is the server's human-readable error, shown verbatim.
	Message string

	// Secret is a site secret the server issued before rejecting the request.
	Secret string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is reports whether target is ErrRemote.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// TransportError wraps a failure where no structured response was received.
type TransportError struct {
	// Op names the request that failed, e.g. "upload".
	Op string

	// Err is the original transport error.
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the original transport error unchanged.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
