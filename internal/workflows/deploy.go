package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/asap-static/asap/internal/archive"
	"github.com/asap-static/asap/internal/audit"
	"github.com/asap-static/asap/internal/client"
	"github.com/asap-static/asap/internal/configs"
	kerrors "github.com/asap-static/asap/internal/errors"
	logger "github.com/asap-static/asap/internal/logging"
	"github.com/asap-static/asap/internal/prompt"
	"github.com/asap-static/asap/internal/registry"
	"github.com/asap-static/asap/internal/utils"
)

// Uploader sends an archive to the hosting service.
type Uploader interface {
	Upload(ctx context.Context, archivePath, tag string) (*client.UploadResult, error)
}

// DeployOptions configures the deploy workflow.
type DeployOptions struct {
	// Path is the directory to deploy. Empty means the working directory.
	Path string

	// Tag is the site tag. Empty means a generated tag is offered through
	// Prompter.
	Tag string

	// Confirm asks the user to confirm or edit Path before archiving.
	Confirm bool

	// Prompter answers questions. Nil behaves like prompt.Static.
	Prompter prompt.Prompter

	// Archiver builds the upload archive. Nil uses the default archiver.
	Archiver *archive.Archiver

	// Client uploads the archive.
	Client Uploader

	// Registry stores the returned site secret.
	Registry *registry.Registry

	// Domain is the hosting domain used to derive the site URL.
	Domain string

	// History records the outcome. Nil disables history.
	History *audit.History

	// Started is called once the path and tag are resolved, before any
	// archiving or network activity. Prompts never happen after it.
	Started func(path, tag string)

	Logger logger.Logger
}

// DeployResult contains the outcome of a deploy operation.
type DeployResult struct {
	// Path is the absolute directory that was deployed.
	Path string

	// Tag is the site tag the archive was uploaded under.
	Tag string

	// URL is the live site URL.
	URL string

	// Message is the server's response message.
	Message string

	// SecretStored is true when a new site secret was written to the registry.
	SecretStored bool

	// Files lists the archived files.
	Files []string

	// ArchiveBytes is the size of the uploaded archive.
	ArchiveBytes int64
}

// Deploy archives a directory, uploads it under a tag and stores the
// secret the server issues for that tag.
//
// Returns ErrInvalidInput if the directory or tag is invalid, and
// ErrCancelled if the user aborts a prompt. An unreadable registry returns
// ErrRegistryCorrupt. Nothing is sent to the server in any of these cases. A *RemoteError from the upload may carry a site secret;
// it is stored before the error is returned.
func Deploy(ctx context.Context, opts DeployOptions) (*DeployResult, error) {
	log := opts.Logger
	if opts.Client == nil || opts.Registry == nil {
		return nil, fmt.Errorf("deploy requires a client and a registry")
	}

	ask := opts.Prompter
	if ask == nil {
		ask = prompt.Static{}
	}

	domain := opts.Domain
	if domain == "" {
		domain = configs.DefaultHostingDomain
	}

	dir, err := resolveDeployPath(opts, ask)
	if err != nil {
		return nil, err
	}
	log.Debugf("Resolved deploy path to %s", dir)

	tag, err := resolveDeployTag(opts, ask)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using tag %s", tag)

	// A secret the server issues must have somewhere to go.
	if _, err := opts.Registry.Load(); err != nil {
		return nil, err
	}

	result := &DeployResult{
		Path: dir,
		Tag:  tag,
		URL:  utils.SiteURL(tag, domain),
	}

	if opts.Started != nil {
		opts.Started(dir, tag)
	}

	archiver := opts.Archiver
	if archiver == nil {
		archiver = &archive.Archiver{}
	}

	bundle, err := archiver.Create(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer archive.Cleanup(bundle)

	result.Files = bundle.Files
	result.ArchiveBytes = bundle.Bytes
	log.Infof("Archived %d files (%d bytes), skipped %d", len(bundle.Files), bundle.Bytes, len(bundle.Skipped))

	uploaded, uploadErr := opts.Client.Upload(ctx, bundle.Path, tag)

	secret := ""
	if uploadErr == nil {
		secret = uploaded.Secret
		result.Message = uploaded.Message
	} else {
		var remoteErr *kerrors.RemoteError
		if errors.As(uploadErr, &remoteErr) {
			secret = remoteErr.Secret
		}
	}

	if secret != "" {
		if err := opts.Registry.Set(tag, secret); err != nil {
			// Keep the secret in the message; it is the only copy left.
			saveErr := fmt.Errorf("saving site secret %q for %s: %w", secret, tag, err)
			recordHistory(opts.History, deployEntry(result, errors.Join(uploadErr, fmt.Errorf("saving site secret: %w", err))), log)
			return nil, errors.Join(uploadErr, saveErr)
		}
		result.SecretStored = true
		log.Debugf("Stored site secret for %s in %s", tag, opts.Registry.Path())
	}

	recordHistory(opts.History, deployEntry(result, uploadErr), log)

	if uploadErr != nil {
		return nil, uploadErr
	}
	return result, nil
}

// resolveDeployPath returns the absolute directory to deploy.
func resolveDeployPath(opts DeployOptions, ask prompt.Prompter) (string, error) {
	path := opts.Path
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		path = wd
	}

	if opts.Confirm {
		answer, err := ask.Ask("Directory to deploy", path, func(p string) error {
			_, err := utils.ValidateDirectory(p)
			return err
		})
		if err != nil {
			return "", err
		}
		path = answer
	}

	return utils.ValidateDirectory(path)
}

// resolveDeployTag returns the explicit tag, or asks the user to accept or
// edit a generated one.
func resolveDeployTag(opts DeployOptions, ask prompt.Prompter) (string, error) {
	if opts.Tag != "" {
		if err := utils.ValidateTag(opts.Tag); err != nil {
			return "", err
		}
		return opts.Tag, nil
	}

	return ask.Ask("Site tag", utils.GenerateTag(), utils.ValidateTag)
}

func deployEntry(result *DeployResult, err error) audit.Entry {
	return audit.Entry{
		Operation: audit.OpDeploy,
		Tag:       result.Tag,
		URL:       result.URL,
	}.Outcome(err)
}

// recordHistory appends entry to h, logging a failed write at debug level.
func recordHistory(h *audit.History, entry audit.Entry, log logger.Logger) {
	if err := h.Log(entry); err != nil {
		log.Debugf("Could not write history: %v", err)
	}
}
