package directory

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fwmap/pkg/errors"
)

func TestArtifactsFiltersExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"DS-2CD2047G2_V5.7.0_220822.zip",
		"DS-7608NI-K2_V4.61.005.DAV",
		"nvr.pak",
		"camera.bin",
		"notes.txt",
		"checksums.sha256",
	} {
		require.NoError(t, afero.WriteFile(fs, "/fw/"+name, []byte("x"), 0o644))
	}
	require.NoError(t, fs.MkdirAll("/fw/archive.zip", 0o755))

	names, err := New(fs, "/fw").Artifacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DS-2CD2047G2_V5.7.0_220822.zip",
		"DS-7608NI-K2_V4.61.005.DAV",
		"camera.bin",
		"nvr.pak",
	}, names)
}

func TestArtifactsMissingDirectory(t *testing.T) {
	names, err := New(afero.NewMemMapFs(), "/nowhere").Artifacts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestArtifactsUnreadable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/fw", []byte("not a dir"), 0o644))

	_, err := New(fs, "/fw").Artifacts(context.Background())
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/fw/a.zip", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/fw/notes.txt", []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll("/fw/sub.zip", 0o755))
	d := New(fs, "/fw")

	assert.True(t, d.Exists("a.zip"))
	assert.False(t, d.Exists("b.zip"))
	assert.False(t, d.Exists("sub.zip"))
	assert.False(t, d.Exists("notes.txt"))
	assert.False(t, d.Exists("../fw/a.zip"))
	assert.False(t, d.Exists(""))
}
