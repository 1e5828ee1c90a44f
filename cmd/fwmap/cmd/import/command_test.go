package importcmd_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fwmap"
	importcmd "github.com/agentstation/fwmap/cmd/fwmap/cmd/import"
	"github.com/agentstation/fwmap/internal/appcontext"
)

func TestImportCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	export := "/data/export.jsonl"
	line := `{"text":"DS-2CD2047G2 V5.7.0 build 220822","href":"https://cdn.example.com/fw/DS-2CD2047G2_V5.7.0_220822.zip","context":"Firmware for DS-2CD2047G2"}` + "\n"
	require.NoError(t, afero.WriteFile(fs, export, []byte(line), 0o644))

	client, err := fwmap.New(context.Background(),
		fwmap.WithFs(fs),
		fwmap.WithDataDir("/data"),
		fwmap.WithFirmwareDir("/firmware"),
	)
	require.NoError(t, err)
	app := &appcontext.Mock{ClientFunc: func() (fwmap.Client, error) { return client, nil }}

	cmd := importcmd.NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{export})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), `"added": 1`)
	assert.Equal(t, 1, client.State().Firmwares.Len())
}

func TestImportCommandNeedsPath(t *testing.T) {
	cmd := importcmd.NewCommand(&appcontext.Mock{})
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
