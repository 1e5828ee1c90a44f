// Package directory lists firmware archives in a local download directory.
package directory

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/sources"
)

var _ sources.ArtifactDir = (*Directory)(nil)

// Directory is a flat directory of downloaded firmware archives.
type Directory struct {
	fs   afero.Fs
	path string
}

// New creates a Directory over path on fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, path string) *Directory {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Directory{fs: fs, path: path}
}

// Path returns the directory path.
func (d *Directory) Path() string {
	return d.path
}

// Artifacts returns the sorted names of regular files with an allow-listed
// extension. A missing directory is reported as empty.
func (d *Directory) Artifacts(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(d.fs, d.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.FromContext(ctx).Debug().Str("path", d.path).Msg("Artifact directory does not exist")
			return []string{}, nil
		}
		return nil, errors.WrapIO("read", d.path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !extract.HasArtifactExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether name is an allow-listed regular file in the
// directory.
func (d *Directory) Exists(name string) bool {
	if name == "" || filepath.Base(name) != name || !extract.HasArtifactExtension(name) {
		return false
	}
	info, err := d.fs.Stat(filepath.Join(d.path, name))
	return err == nil && !info.IsDir()
}
