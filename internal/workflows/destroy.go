package workflows

import (
	"context"
	"fmt"

	"github.com/asap-static/asap/internal/audit"
	"github.com/asap-static/asap/internal/configs"
	kerrors "github.com/asap-static/asap/internal/errors"
	logger "github.com/asap-static/asap/internal/logging"
	"github.com/asap-static/asap/internal/registry"
	"github.com/asap-static/asap/internal/utils"
)

// Destroyer deletes a site on the hosting service.
type Destroyer interface {
	Destroy(ctx context.Context, tag, secret string) (string, error)
}

// DestroyOptions configures the destroy workflow.
type DestroyOptions struct {
	// Tag is the site to destroy.
	Tag string

	// Client sends the destroy request.
	Client Destroyer

	// Registry holds the site secret and is pruned on success.
	Registry *registry.Registry

	// Domain is the hosting domain used to derive the site URL.
	Domain string

	// History records the outcome. Nil disables history.
	History *audit.History

	Logger logger.Logger
}

// DestroyResult contains the outcome of a destroy operation.
type DestroyResult struct {
	// Tag is the destroyed site's tag.
	Tag string

	// URL is the URL the site was served at.
	URL string

	// Message is the server's response message.
	Message string
}

// Destroy deletes a site using the secret stored for its tag, then removes
// the tag from the registry.
//
// Returns ErrNoPermission without contacting the server if no secret is
// stored for the tag. On a server or transport error the registry entry is
// kept.
func Destroy(ctx context.Context, opts DestroyOptions) (*DestroyResult, error) {
	if opts.Client == nil || opts.Registry == nil {
		return nil, fmt.Errorf("destroy requires a client and a registry")
	}

	domain := opts.Domain
	if domain == "" {
		domain = configs.DefaultHostingDomain
	}

	secret, ok, err := opts.Registry.Get(opts.Tag)
	if err != nil {
		return nil, err
	}
	if !ok || secret == "" {
		opts.Logger.Debugf("No secret stored for %q", opts.Tag)
		return nil, kerrors.ErrNoPermission
	}

	result := &DestroyResult{
		Tag: opts.Tag,
		URL: utils.SiteURL(opts.Tag, domain),
	}
	entry := audit.Entry{Operation: audit.OpDestroy, Tag: result.Tag, URL: result.URL}

	message, err := opts.Client.Destroy(ctx, opts.Tag, secret)
	if err != nil {
		recordHistory(opts.History, entry.Outcome(err), opts.Logger)
		return nil, err
	}
	result.Message = message

	if err := opts.Registry.Delete(opts.Tag); err != nil {
		err = fmt.Errorf("site destroyed but registry not updated: %w", err)
		recordHistory(opts.History, entry.Outcome(err), opts.Logger)
		return nil, err
	}
	opts.Logger.Debugf("Removed %s from %s", opts.Tag, opts.Registry.Path())

	recordHistory(opts.History, entry.Outcome(nil), opts.Logger)
	return result, nil
}
