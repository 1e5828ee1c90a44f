package sync_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fwmap"
	syncmd "github.com/agentstation/fwmap/cmd/fwmap/cmd/sync"
	"github.com/agentstation/fwmap/internal/appcontext"
	"github.com/agentstation/fwmap/internal/cmd/output"
)

func newApp(t *testing.T, fs afero.Fs, format string) (*appcontext.Mock, fwmap.Client) {
	t.Helper()
	client, err := fwmap.New(context.Background(),
		fwmap.WithFs(fs),
		fwmap.WithDataDir("/data"),
		fwmap.WithFirmwareDir("/firmware"),
	)
	require.NoError(t, err)
	return &appcontext.Mock{
		ClientFunc:       func() (fwmap.Client, error) { return client, nil },
		OutputFormatFunc: func() string { return format },
	}, client
}

func TestSyncCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/firmware/DS-2CD2047G2_V5.7.0_220822.zip", []byte("x"), 0o644))
	app, client := newApp(t, fs, "json")

	cmd := syncmd.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--readme"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var rows []output.PassRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.NotEmpty(t, rows)
	var directory output.PassRow
	for _, r := range rows {
		if r.Pass == "directory" {
			directory = r
		}
	}
	assert.Equal(t, 1, directory.Added)
	assert.Equal(t, 1, client.State().Firmwares.Len())

	readme, err := afero.ReadFile(fs, "/data/README.md")
	require.NoError(t, err)
	assert.Contains(t, string(readme), "DS-2CD2047G2")
}

func TestSyncCommandTableSummary(t *testing.T) {
	app, _ := newApp(t, afero.NewMemMapFs(), "table")

	cmd := syncmd.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--skip-releases"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Directory: 0 archives")
	assert.Contains(t, out.String(), "Catalog: 0 firmwares across 0 devices")
}
