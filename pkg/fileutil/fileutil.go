// Package fileutil provides the read-only filesystem capability the checks
// run against: existence checks, a flat directory listing and file reads,
// all relative to a template root.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"github.com/workflow-templates/templatelint/pkg/logger"
)

var log = logger.New("fileutil:fileutil")

// TemplateFS is a read-only view of a template root. Names passed to its
// methods are relative to that root.
type TemplateFS struct {
	root string
	fs   afero.Fs
}

// NewTemplateFS scopes base to root and makes it read-only. A relative root
// is resolved against the working directory; Root still returns it as given.
func NewTemplateFS(base afero.Fs, root string) *TemplateFS {
	scope := root
	if abs, err := filepath.Abs(root); err == nil {
		scope = abs
	} else {
		log.Printf("Could not resolve %s: %v", root, err)
	}
	return &TemplateFS{
		root: root,
		fs:   afero.NewReadOnlyFs(afero.NewBasePathFs(base, scope)),
	}
}

// Root returns the directory the view is scoped to.
func (t *TemplateFS) Root() string {
	return t.root
}

// FileExists reports whether name exists and is not a directory.
func (t *TemplateFS) FileExists(name string) bool {
	info, err := t.fs.Stat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// RootExists reports whether the root itself is an existing directory.
func (t *TemplateFS) RootExists() bool {
	info, err := t.fs.Stat(string(filepath.Separator))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ListFiles returns the sorted names of the regular files directly under the
// root. Subdirectories are not descended into.
func (t *TemplateFS) ListFiles() ([]string, error) {
	entries, err := afero.ReadDir(t.fs, string(filepath.Separator))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	log.Printf("Listed %d files in %s", len(names), t.root)
	return names, nil
}

// ReadFile reads name. A missing file yields an error matching fs.ErrNotExist.
func (t *TemplateFS) ReadFile(name string) ([]byte, error) {
	data, err := afero.ReadFile(t.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
