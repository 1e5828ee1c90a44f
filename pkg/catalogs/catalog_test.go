package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fw(model, hw, version, date string) Firmware {
	return Firmware{
		DeviceID:        100000,
		Model:           model,
		HardwareVersion: hw,
		Version:         version,
		Date:            date,
		Source:          SourceLive,
	}
}

func TestUpsertIdempotent(t *testing.T) {
	c := NewCatalog()
	f := fw("DS-2CD2047G2", "IPC_G0", "5.7.0", "2022-08-22")

	assert.True(t, c.Upsert(f))
	assert.False(t, c.Upsert(f))
	assert.Equal(t, 1, c.Len())
}

func TestUpsertFirstWriterWins(t *testing.T) {
	c := NewCatalog()
	first := fw("DS-2CD2047G2", "IPC_G0", "5.7.0", "2022-08-22")
	first.Notes = "original"
	second := first
	second.Notes = "replacement"
	second.Source = SourceManual

	require.True(t, c.Upsert(first))
	require.False(t, c.Upsert(second))

	got, ok := c.Get(first.Key())
	require.True(t, ok)
	assert.Equal(t, "original", got.Notes)
	assert.Equal(t, SourceLive, got.Source)
}

func TestBackfillFilename(t *testing.T) {
	c := NewCatalog()
	f := fw("DS-2CD2047G2", "IPC_G0", "5.7.0", "")
	c.Upsert(f)

	assert.False(t, c.BackfillFilename(f.Key(), ""))
	assert.True(t, c.BackfillFilename(f.Key(), "a.zip"))
	assert.False(t, c.BackfillFilename(f.Key(), "b.zip"))
	assert.False(t, c.BackfillFilename("missing", "c.zip"))

	got, _ := c.Get(f.Key())
	assert.Equal(t, "a.zip", got.Filename)

	byName, ok := c.ByFilename("a.zip")
	require.True(t, ok)
	assert.Equal(t, f.Key(), byName.Key())
}

func TestRemove(t *testing.T) {
	c := NewCatalog()
	f := fw("DS-2CD2047G2", "IPC_G0", "5.7.0", "")
	c.Upsert(f)
	assert.True(t, c.Remove(f.Key()))
	assert.False(t, c.Remove(f.Key()))
	assert.Equal(t, 0, c.Len())
}

func TestByDeviceNewestFirst(t *testing.T) {
	c := NewCatalog()
	c.Upsert(fw("DS-A", "IPC_G0", "5.5.0", "2021-01-01"))
	c.Upsert(fw("DS-A", "IPC_G0", "5.7.10", "2022-08-22"))
	c.Upsert(fw("DS-A", "IPC_G0", "5.7.9", "2022-08-22"))
	c.Upsert(fw("DS-A", "IPC_G0", "5.8.0", ""))
	c.Upsert(fw("DS-A", "IPC_G0", "garbage", ""))
	c.Upsert(fw("DS-A", "IPC_G0", "5.6.0", "sometime"))

	other := fw("DS-B", "IPC_G0", "9.9.9", "2030-01-01")
	other.DeviceID = 100001
	c.Upsert(other)

	var versions []string
	for _, f := range c.ByDevice(100000) {
		versions = append(versions, f.Version)
	}
	assert.Equal(t, []string{"5.7.10", "5.7.9", "5.5.0", "5.8.0", "5.6.0", "garbage"}, versions)
}

func TestReferencedDevices(t *testing.T) {
	c := NewCatalog()
	a := fw("DS-A", "IPC_G0", "1.0.0", "")
	b := fw("DS-B", "IPC_G0", "1.0.0", "")
	b.DeviceID = 100002
	c.Upsert(a)
	c.Upsert(b)
	assert.Equal(t, map[int]bool{100000: true, 100002: true}, c.ReferencedDevices())
}

func TestHasURLEvidence(t *testing.T) {
	tests := map[string]bool{
		"":                                 false,
		"#download-agreement":              false,
		"https://x/materials-license-agreement?f=1": false,
		"https://x/download-agreement/123": false,
		"https://x/fw/DS-A_V1.0.0.zip":     true,
	}
	for url, want := range tests {
		f := Firmware{DownloadURL: url}
		assert.Equal(t, want, f.HasURLEvidence(), url)
	}
}

func TestSource(t *testing.T) {
	assert.True(t, SourceGitHubReleases.IsValid())
	assert.False(t, Source("scrape").IsValid())
	assert.False(t, SourceManual.RequiresEvidence())
	assert.True(t, SourceDirectorySync.RequiresEvidence())
}
