package reconciler_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/constants"
	pkgerrors "github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/reconciler"
	"github.com/agentstation/fwmap/pkg/sources"
)

type fakeDir struct {
	files []string
	err   error
}

func (d *fakeDir) Artifacts(context.Context) ([]string, error) {
	return d.files, d.err
}

func (d *fakeDir) Exists(name string) bool {
	return d.err == nil && slices.Contains(d.files, name)
}

type fakeHost struct {
	releases []sources.Release
	err      error
	calls    int
}

func (h *fakeHost) ListReleases(context.Context) ([]sources.Release, error) {
	h.calls++
	return h.releases, h.err
}

func (h *fakeHost) DownloadURL(filename string) string {
	return "https://github.com/acme/firmware/releases/latest/download/" + filename
}

func newReconciler(t *testing.T, state *catalogs.State, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	r, err := reconciler.New(state, opts...)
	require.NoError(t, err)
	return r
}

func put(state *catalogs.State, f catalogs.Firmware) catalogs.Firmware {
	f.DeviceID = state.Devices.ResolveOrCreate(f.Model, f.HardwareVersion)
	state.Firmwares.Upsert(f)
	return f
}

func TestNewValidation(t *testing.T) {
	_, err := reconciler.New(nil)
	assert.True(t, pkgerrors.IsValidationError(err))

	_, err = reconciler.New(catalogs.NewState(), reconciler.WithCheckpoint(func(context.Context) error { return nil }, 0))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestDirectoryIngestEndToEnd(t *testing.T) {
	ctx := context.Background()
	state := catalogs.NewState()
	dir := &fakeDir{files: []string{"DS-2CD2047G2_V5.7.0_220822.zip"}}
	r := newReconciler(t, state, reconciler.WithDirectory(dir))

	result := r.Run(ctx)
	require.True(t, result.IsSuccess())
	require.Equal(t, 1, state.Firmwares.Len())
	assert.Equal(t, 1, result.Artifacts)

	f, ok := state.Firmwares.Get("DS-2CD2047G2_UNKNOWN_5.7.0")
	require.True(t, ok)
	assert.Equal(t, "2022-08-22", f.Date)
	assert.Equal(t, "DS-2CD2047G2_V5.7.0_220822.zip", f.Filename)
	assert.Equal(t, catalogs.SourceDirectorySync, f.Source)
	assert.Equal(t, constants.FirstDeviceID, f.DeviceID)

	before := state.Firmwares.List()
	devices := state.Devices.List()

	second := r.Run(ctx)
	assert.Equal(t, 0, second.Added())
	assert.Equal(t, 0, second.Removed())
	assert.Equal(t, 0, second.Backfilled())
	assert.Equal(t, before, state.Firmwares.List())
	assert.Equal(t, devices, state.Devices.List())
}

func TestDirectoryIngestBackfillsExistingRecord(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: "DS-2CD2047G2", HardwareVersion: "IPC_G5", Version: "5.7.0",
		DownloadURL: "https://example.com/fw", Source: catalogs.SourceLive,
	})
	dir := &fakeDir{files: []string{"DS-2CD2047G2_V5.7.0_220822.zip"}}
	r := newReconciler(t, state, reconciler.WithDirectory(dir))

	pr := r.IngestDirectory(context.Background())
	assert.Equal(t, 1, pr.Backfilled)
	assert.Equal(t, 0, pr.Added)
	require.Equal(t, 1, state.Firmwares.Len())

	f, _ := state.Firmwares.Get("DS-2CD2047G2_IPC_G5_5.7.0")
	assert.Equal(t, "DS-2CD2047G2_V5.7.0_220822.zip", f.Filename)
}

func TestDirectoryIngestRecognizesFileKnownUnderAnotherName(t *testing.T) {
	ctx := context.Background()
	state := catalogs.NewState()
	host := &fakeHost{releases: []sources.Release{{
		Tag:    "v5.7.0",
		Body:   "Model: DS-2CD2047G2\nVersion: V5.7.0\n",
		Assets: []sources.Asset{{Name: "DS-2CD2047G2_V5.7.0_220822_release.zip"}},
	}}}
	dir := &fakeDir{files: []string{"DS-2CD2047G2_V5.7.0_220822.zip"}}
	r := newReconciler(t, state, reconciler.WithReleases(host), reconciler.WithDirectory(dir))

	result := r.Run(ctx)
	require.True(t, result.IsSuccess())
	require.Equal(t, 1, state.Firmwares.Len())
	assert.Equal(t, 1, state.Devices.Len())

	f, ok := state.Firmwares.Get("DS-2CD2047G2_IPC_G0_5.7.0")
	require.True(t, ok)
	assert.Equal(t, "DS-2CD2047G2_V5.7.0_220822_release.zip", f.Filename)

	pr, _ := result.Pass(reconciler.PassDirectory)
	assert.Equal(t, 0, pr.Added)
	assert.Equal(t, 1, pr.Duplicates)

	r.Run(ctx)
	assert.Equal(t, 1, state.Firmwares.Len())
}

func TestDirectoryIngestNamedFileNotClaimedByUnknownRecord(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.7.0",
		Filename: "firmware_V5.7.0.zip", Source: catalogs.SourceDirectorySync,
	})
	dir := &fakeDir{files: []string{"DS-2CD2047G2_V5.7.0_220822.zip"}}
	r := newReconciler(t, state, reconciler.WithDirectory(dir))

	pr := r.IngestDirectory(context.Background())
	assert.Equal(t, 1, pr.Added)
	_, ok := state.Firmwares.Get("DS-2CD2047G2_UNKNOWN_5.7.0")
	assert.True(t, ok)
}

func TestDirectoryIngestSkipsUnidentifiable(t *testing.T) {
	state := catalogs.NewState()
	dir := &fakeDir{files: []string{"readme.zip", "DS-2CD2047G2_firmware.zip"}}
	r := newReconciler(t, state, reconciler.WithDirectory(dir))

	pr := r.IngestDirectory(context.Background())
	assert.Equal(t, 2, pr.Skipped)
	assert.Equal(t, 0, state.Firmwares.Len())
	assert.Equal(t, 0, state.Devices.Len())
}

func TestCleanupKeepsIdentifiedRecords(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: "DS-2CD2047G2", HardwareVersion: constants.Unknown, Version: "5.7.0",
		Filename: "gone.zip", Source: catalogs.SourceDirectorySync,
	})
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{}))

	r.Run(context.Background())
	assert.Equal(t, 1, state.Firmwares.Len())
}

func TestCleanupRemovesPlaceholders(t *testing.T) {
	state := catalogs.NewState()
	f := put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.5.0",
		Source: catalogs.SourceDirectorySync,
	})
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{}))

	result := r.Run(context.Background())
	assert.Equal(t, 0, state.Firmwares.Len())

	pr, ok := result.Pass(reconciler.PassPlaceholders)
	require.True(t, ok)
	assert.Equal(t, 1, pr.Removed)

	_, ok = state.Devices.Get(f.DeviceID)
	assert.False(t, ok, "orphaned UNKNOWN device should be removed")
}

func TestCleanupPlaceholderNeedsAllConditions(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.5.0",
		AppliedTo: "Applied to: DS-2CD2xx", Source: catalogs.SourceDirectorySync,
	})
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.6.0",
		Source: catalogs.SourceManual,
	})
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{}))

	pr := r.CleanupPlaceholders(context.Background())
	assert.Equal(t, 0, pr.Removed)
	assert.Equal(t, 2, state.Firmwares.Len())
}

func TestCleanupMissingEvidence(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.1.0",
		DownloadURL: "https://example.com/materials-license-agreement", Source: catalogs.SourceLive,
	})
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.2.0",
		DownloadURL: "https://example.com/fw/5.2.0.zip", Source: catalogs.SourceLive,
	})
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.3.0",
		Source: catalogs.SourceManual,
	})
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{}))

	pr := r.CleanupMissingEvidence(context.Background())
	assert.Equal(t, 1, pr.Removed)

	_, ok := state.Firmwares.Get("UNKNOWN_UNKNOWN_5.1.0")
	assert.False(t, ok)
	_, ok = state.Firmwares.Get("UNKNOWN_UNKNOWN_5.2.0")
	assert.True(t, ok)
	_, ok = state.Firmwares.Get("UNKNOWN_UNKNOWN_5.3.0")
	assert.True(t, ok)
}

func TestCleanupMissingEvidenceRematches(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.7.0",
		Source: catalogs.SourceLive,
	})
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{files: []string{"firmware_V5.7.0.zip"}}))

	pr := r.CleanupMissingEvidence(context.Background())
	assert.Equal(t, 1, pr.Backfilled)
	assert.Equal(t, 0, pr.Removed)

	f, ok := state.Firmwares.Get("UNKNOWN_UNKNOWN_5.7.0")
	require.True(t, ok)
	assert.Equal(t, "firmware_V5.7.0.zip", f.Filename)
}

func TestOrphanDevices(t *testing.T) {
	state := catalogs.NewState()
	used := put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: "IPC_G5", Version: "5.7.0",
		DownloadURL: "https://example.com/a.zip", Source: catalogs.SourceLive,
	})
	orphan := state.Devices.ResolveOrCreate(constants.Unknown, "NVR_G0")
	identified := state.Devices.ResolveOrCreate("DS-7608NI", "NVR_G0")
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{}))

	pr := r.CleanupOrphanDevices(context.Background())
	assert.Equal(t, 1, pr.Removed)

	_, ok := state.Devices.Get(used.DeviceID)
	assert.True(t, ok)
	_, ok = state.Devices.Get(orphan)
	assert.False(t, ok)
	_, ok = state.Devices.Get(identified)
	assert.True(t, ok, "identified devices are never pruned")
}

func TestReleaseIngest(t *testing.T) {
	state := catalogs.NewState()
	host := &fakeHost{releases: []sources.Release{{
		Tag:  "v5.7.0",
		Body: "Model: DS-2CD2047G2\nVersion: V5.7.0\nHardware Version: IPC_G5\nRelease Date: 2022-08-22\n",
		Assets: []sources.Asset{
			{Name: "DS-2CD2047G2_V5.7.0_220822.zip"},
			{Name: "checksums.txt"},
		},
	}}}
	r := newReconciler(t, state, reconciler.WithReleases(host))

	pr := r.IngestReleases(context.Background())
	assert.Equal(t, 1, pr.Added)

	f, ok := state.Firmwares.Get("DS-2CD2047G2_IPC_G5_5.7.0")
	require.True(t, ok)
	assert.Equal(t, catalogs.SourceGitHubReleases, f.Source)
	assert.Equal(t, "2022-08-22", f.Date)
	assert.Equal(t, "DS-2CD2047G2_V5.7.0_220822.zip", f.Filename)
	assert.Equal(t, host.DownloadURL(f.Filename), f.DownloadURL)

	again := r.IngestReleases(context.Background())
	assert.Equal(t, 0, again.Processed, "assets already claimed by filename are skipped")
}

func TestReleaseFailureContinues(t *testing.T) {
	state := catalogs.NewState()
	host := &fakeHost{err: errors.New("connection refused")}
	dir := &fakeDir{files: []string{"DS-2CD2047G2_V5.7.0_220822.zip"}}
	r := newReconciler(t, state, reconciler.WithReleases(host), reconciler.WithDirectory(dir))

	result := r.Run(context.Background())
	assert.False(t, result.IsSuccess())
	require.Len(t, result.Errors, 1)
	assert.True(t, pkgerrors.IsCollaboratorUnavailable(result.Errors[0]))

	pr, _ := result.Pass(reconciler.PassReleases)
	assert.True(t, pr.Aborted)
	assert.Equal(t, 1, state.Firmwares.Len())
}

func TestDirectoryFailureSkipsCleanup(t *testing.T) {
	state := catalogs.NewState()
	put(state, catalogs.Firmware{
		Model: constants.Unknown, HardwareVersion: constants.Unknown, Version: "5.5.0",
		Source: catalogs.SourceDirectorySync,
	})
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{err: errors.New("permission denied")}))

	result := r.Run(context.Background())
	assert.False(t, result.IsSuccess())
	assert.Equal(t, 1, state.Firmwares.Len(), "nothing is pruned without a directory listing")
	assert.Equal(t, -1, result.Artifacts)

	pr, ok := result.Pass(reconciler.PassMissingEvidence)
	require.True(t, ok)
	assert.True(t, pr.Aborted)
}

func TestIngestLive(t *testing.T) {
	state := catalogs.NewState()
	dir := &fakeDir{files: []string{"DS-2CD2047G2_V5.6.0_210101.zip"}}
	r := newReconciler(t, state,
		reconciler.WithDirectory(dir),
		reconciler.WithBaseURL("https://vendor.example.com/downloads/"),
	)

	fragments := []extract.Fragment{
		{Text: "DS-2CD2047G2 V5.7.0 build 220822", Href: "/fw/DS-2CD2047G2_V5.7.0_220822.zip"},
		{Text: "DS-2CD2047G2 V5.7.0 build 220822", Href: "/fw/DS-2CD2047G2_V5.7.0_220822.zip"},
		{Text: "DS-2CD2047G2 V5.6.0", Href: "https://vendor.example.com/materials-license-agreement",
			Filename: "DS-2CD2047G2_V5.6.0_210101.zip"},
		{Text: "DS-2CD2047G2 V5.5.0", Href: "https://vendor.example.com/download-agreement"},
		{Text: "Release notes", Href: "/notes.pdf"},
	}

	pr := r.IngestLive(context.Background(), fragments)
	assert.Equal(t, 5, pr.Processed)
	assert.Equal(t, 2, pr.Added)
	assert.Equal(t, 1, pr.Duplicates)
	assert.Equal(t, 2, pr.Skipped)

	for _, f := range state.Firmwares.List() {
		assert.Equal(t, catalogs.SourceLive, f.Source)
		assert.True(t, f.HasURLEvidence() || f.Filename != "", f.Key())
	}
}

func TestAddManual(t *testing.T) {
	ctx := context.Background()
	state := catalogs.NewState()
	r := newReconciler(t, state)

	f, added, err := r.AddManual(ctx, reconciler.ManualEntry{
		Model:   "  DS-2CD2047G2 ",
		Version: "V5.7.0",
		URL:     "https://example.com/fw/DS-2CD2047G2_V5.7.0.zip",
		Date:    "220822",
	})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "DS-2CD2047G2_UNKNOWN_5.7.0", f.Key())
	assert.Equal(t, "2022-08-22", f.Date)
	assert.Equal(t, "DS-2CD2047G2_V5.7.0.zip", f.Filename)
	assert.Equal(t, catalogs.SourceManual, f.Source)

	again, added, err := r.AddManual(ctx, reconciler.ManualEntry{Model: "DS-2CD2047G2", Version: "5.7.0", Notes: "different"})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, f, again)

	_, _, err = r.AddManual(ctx, reconciler.ManualEntry{Version: "5.7.0"})
	assert.True(t, pkgerrors.IsValidationError(err))
	_, _, err = r.AddManual(ctx, reconciler.ManualEntry{Model: "DS-2CD2047G2"})
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestManualRecordsSurviveCleanup(t *testing.T) {
	ctx := context.Background()
	state := catalogs.NewState()
	r := newReconciler(t, state, reconciler.WithDirectory(&fakeDir{}))

	_, _, err := r.AddManual(ctx, reconciler.ManualEntry{Model: constants.Unknown, Version: "1.0.0"})
	require.NoError(t, err)

	r.Run(ctx)
	assert.Equal(t, 1, state.Firmwares.Len())
	assert.Equal(t, 1, state.Devices.Len())
}

func TestCheckpointing(t *testing.T) {
	state := catalogs.NewState()
	files := []string{
		"DS-2CD2047G2_V5.7.0_220822.zip",
		"DS-2CD2047G2_V5.6.0_210101.zip",
		"DS-2CD2047G2_V5.5.0_200101.zip",
		"DS-2CD2047G2_V5.4.0_190101.zip",
		"DS-2CD2047G2_V5.3.0_180101.zip",
	}
	calls := 0
	checkpoint := func(context.Context) error {
		calls++
		return errors.New("disk full")
	}
	r := newReconciler(t, state,
		reconciler.WithDirectory(&fakeDir{files: files}),
		reconciler.WithCheckpoint(checkpoint, 2),
	)

	result := r.Run(context.Background())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 5, result.Added(), "a failed checkpoint does not stop the run")
	assert.True(t, result.IsSuccess())
}

func TestWithLoggerTagsPasses(t *testing.T) {
	tl := logging.NewTestLogger(t)
	state := catalogs.NewState()
	r := newReconciler(t, state,
		reconciler.WithDirectory(&fakeDir{files: []string{"DS-2CD2047G2_V5.7.0_220822.zip"}}),
		reconciler.WithLogger(tl.Logger),
	)

	result := r.Run(context.Background())
	tl.AssertContains(t, `"pass":"directory"`)
	tl.AssertContains(t, `"run_id":"`+result.RunID+`"`)
	tl.AssertContains(t, "Added firmware")
}
