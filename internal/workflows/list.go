package workflows

import (
	"context"
	"fmt"

	"github.com/asap-static/asap/internal/configs"
	"github.com/asap-static/asap/internal/registry"
	"github.com/asap-static/asap/internal/utils"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	// Registry is read for the deployed sites.
	Registry *registry.Registry

	// Domain is the hosting domain used to derive site URLs.
	Domain string
}

// Site is a deployed site known to the registry.
type Site struct {
	Tag string `json:"tag"`
	URL string `json:"url"`
}

// ListResult contains the outcome of a list operation.
type ListResult struct {
	// Sites are sorted by tag. Empty when nothing has been deployed.
	Sites []Site
}

// List returns every site in the registry with its live URL.
// No network request is made.
//
// Returns ErrRegistryCorrupt if the registry file cannot be parsed.
func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("list requires a registry")
	}

	domain := opts.Domain
	if domain == "" {
		domain = configs.DefaultHostingDomain
	}

	tags, err := opts.Registry.Tags()
	if err != nil {
		return nil, err
	}

	result := &ListResult{Sites: make([]Site, 0, len(tags))}
	for _, tag := range tags {
		result.Sites = append(result.Sites, Site{Tag: tag, URL: utils.SiteURL(tag, domain)})
	}

	return result, nil
}
