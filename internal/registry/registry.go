package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kerrors "github.com/asap-static/asap/internal/errors"
)

// Registry is a handle on the site registry file.
type Registry struct {
	path string
}

// Open returns a handle for the registry at path. The file is created on
// first access.
func Open(path string) *Registry {
	return &Registry{path: path}
}

// Path returns the registry file path, for display.
func (r *Registry) Path() string {
	return r.path
}

// Load returns every tag -> secret entry, creating an empty registry file
// if none exists yet.
// Returns ErrRegistryCorrupt if the file is not a JSON object of strings.
func (r *Registry) Load() (map[string]string, error) {
	if err := r.ensure(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("reading site registry: %w", err)
	}

	sites := make(map[string]string)
	if len(data) == 0 {
		return sites, nil
	}

	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrRegistryCorrupt, r.path, err)
	}
	if sites == nil {
		// The file held a JSON null.
		sites = make(map[string]string)
	}

	return sites, nil
}

// Get returns the secret stored for tag.
func (r *Registry) Get(tag string) (string, bool, error) {
	sites, err := r.Load()
	if err != nil {
		return "", false, err
	}
	secret, ok := sites[tag]
	if !ok || secret == "" {
		return "", false, nil
	}
	return secret, true, nil
}

// Set stores secret for tag, replacing any previous secret.
func (r *Registry) Set(tag, secret string) error {
	return r.Update(tag, &secret)
}

// Delete removes tag from the registry. Removing an absent tag is not an error.
func (r *Registry) Delete(tag string) error {
	return r.Update(tag, nil)
}

// Update stores *secret for tag, or removes the entry when secret is nil.
func (r *Registry) Update(tag string, secret *string) error {
	sites, err := r.Load()
	if err != nil {
		return err
	}

	if secret == nil {
		delete(sites, tag)
	} else {
		sites[tag] = *secret
	}

	return r.save(sites)
}

// Tags returns every registered tag in sorted order.
func (r *Registry) Tags() ([]string, error) {
	sites, err := r.Load()
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(sites))
	for tag := range sites {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// ensure creates an empty registry file if none exists.
func (r *Registry) ensure() error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking site registry: %w", err)
	}
	return r.save(map[string]string{})
}

// save replaces the registry file with sites in one rename.
func (r *Registry) save(sites map[string]string) error {
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("encoding site registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary registry file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing site registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing site registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing site registry: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("setting registry permissions: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replacing site registry: %w", err)
	}
	return nil
}
