// Package archive packs a site directory into a zip file for upload.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	kerrors "github.com/asap-static/asap/internal/errors"
	"github.com/asap-static/asap/internal/utils"
)

const (
	// TempDirPrefix prefixes every temporary directory holding an archive.
	TempDirPrefix = "asap_site_"

	// FileName is the name of the archive inside its temporary directory.
	FileName = "archive.zip"
)

// Archiver builds upload archives.
type Archiver struct {
	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the archived directory.
	Exclude []string

	// IncludeHidden keeps entries whose path has a dot-prefixed segment.
	IncludeHidden bool

	// TempDir is the parent for the per-archive temporary directory.
	// Empty means os.TempDir().
	TempDir string
}

// Result describes a finished archive.
type Result struct {
	// Path is the archive file.
	Path string

	// TempDir is the directory created for this archive; Cleanup removes it.
	TempDir string

	// Files lists the archived regular files, relative and slash-separated.
	Files []string

	// Skipped lists entries left out because they are hidden or excluded.
	Skipped []string

	// Bytes is the size of the archive on disk.
	Bytes int64
}

// Create writes every file and directory under sourceDir into a new zip
// archive in a freshly created temporary directory.
//
// Returns ErrInvalidInput if sourceDir does not exist and ErrNotADirectory
// if it is not a directory. The archive is fully flushed and closed when
// Create returns. On failure nothing is left on disk.
func (a *Archiver) Create(ctx context.Context, sourceDir string) (*Result, error) {
	root, err := utils.ValidateDirectory(sourceDir)
	if err != nil {
		return nil, err
	}

	for _, pattern := range a.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: bad exclude pattern %q", kerrors.ErrInvalidInput, pattern)
		}
	}

	tempDir, err := os.MkdirTemp(a.TempDir, TempDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating temporary directory: %w", err)
	}

	result := &Result{
		Path:    filepath.Join(tempDir, FileName),
		TempDir: tempDir,
	}

	if err := a.write(ctx, root, result); err != nil {
		Cleanup(result)
		return nil, err
	}

	info, err := os.Stat(result.Path)
	if err != nil {
		Cleanup(result)
		return nil, fmt.Errorf("checking archive: %w", err)
	}
	result.Bytes = info.Size()

	return result, nil
}

// Cleanup removes the temporary directory of an archive. Errors are ignored.
func Cleanup(result *Result) {
	if result == nil || result.TempDir == "" {
		return
	}
	_ = os.RemoveAll(result.TempDir)
}

func (a *Archiver) write(ctx context.Context, root string, result *Result) error {
	out, err := os.OpenFile(result.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		if a.skip(rel) {
			result.Skipped = append(result.Skipped, rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		return a.addEntry(zw, path, rel, d, result)
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("archiving %s: %w", root, walkErr)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("flushing archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// skip reports whether rel should be left out of the archive.
func (a *Archiver) skip(rel string) bool {
	if !a.IncludeHidden && utils.IsHiddenPath(rel) {
		return true
	}
	for _, pattern := range a.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (a *Archiver) addEntry(zw *zip.Writer, path, rel string, d fs.DirEntry, result *Result) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		// Follow links to regular files only; directory links could loop.
		target, err := os.Stat(path)
		if err != nil || !target.Mode().IsRegular() {
			result.Skipped = append(result.Skipped, rel)
			return nil
		}
		info = target
	}

	if info.IsDir() {
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("creating header for %s: %w", rel, err)
		}
		header.Name = rel + "/"
		header.Method = zip.Store
		_, err = zw.CreateHeader(header)
		return err
	}

	if !info.Mode().IsRegular() {
		result.Skipped = append(result.Skipped, rel)
		return nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("creating header for %s: %w", rel, err)
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("writing header for %s: %w", rel, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", rel, err)
	}
	defer file.Close()

	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}

	result.Files = append(result.Files, rel)
	return nil
}
