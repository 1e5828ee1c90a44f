package reconciler

import (
	"context"
	"strings"

	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/normalize"
)

// ManualEntry is an operator-supplied firmware record.
type ManualEntry struct {
	Model           string
	HardwareVersion string
	Version         string
	URL             string
	Date            string
	Changes         string
	Notes           string
	SupportedModels []string
}

// AddManual stores entry as a trusted record. Manual records need no
// evidence and are never pruned. When the key already exists the stored
// record is returned unchanged with added=false.
func (r *reconciler) AddManual(ctx context.Context, entry ManualEntry) (catalogs.Firmware, bool, error) {
	ctx = logging.WithSource(r.scope(ctx), catalogs.SourceManual.String())
	logger := logging.FromContext(ctx)

	model := normalize.Model(entry.Model)
	if model == "" {
		return catalogs.Firmware{}, false, errors.NewValidationError("model", entry.Model, "is required")
	}
	version := strings.TrimSpace(entry.Version)
	if v, ok := extract.Version(version); ok {
		version = v
	}
	if version == "" {
		return catalogs.Firmware{}, false, errors.NewValidationError("version", entry.Version, "is required")
	}
	hw := strings.TrimSpace(entry.HardwareVersion)
	if hw == "" {
		hw = constants.Unknown
	}

	key := catalogs.Key(model, hw, version)
	if existing, ok := r.state.Firmwares.Get(key); ok {
		logger.Info().Str("firmware", key).Msg("Firmware already present")
		return existing, false, nil
	}

	url := strings.TrimSpace(entry.URL)
	f := catalogs.Firmware{
		DeviceID:        r.state.Devices.ResolveOrCreate(model, hw),
		Model:           model,
		HardwareVersion: hw,
		Version:         version,
		Date:            normalize.FormatDate(strings.TrimSpace(entry.Date)),
		DownloadURL:     url,
		Filename:        extract.FilenameFromURL(url),
		SupportedModels: entry.SupportedModels,
		Changes:         entry.Changes,
		Notes:           entry.Notes,
		IsBeta:          normalize.IsBeta(version, entry.Notes),
		Source:          catalogs.SourceManual,
	}
	r.state.Firmwares.Upsert(f)

	logger.Info().Str("firmware", key).Int("device_id", f.DeviceID).Msg("Added manual firmware")
	stored, _ := r.state.Firmwares.Get(key)
	return stored, true, nil
}
