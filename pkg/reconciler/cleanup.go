package reconciler

import (
	"context"

	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/logging"
)

// CleanupPlaceholders lists the directory and runs the placeholder pass.
func (r *reconciler) CleanupPlaceholders(ctx context.Context) PassResult {
	files, err := r.listFiles(ctx)
	if err != nil {
		return PassResult{Pass: PassPlaceholders, Aborted: true, Err: err}
	}
	return r.cleanupPlaceholders(ctx, files)
}

// CleanupMissingEvidence lists the directory and runs the evidence pass.
func (r *reconciler) CleanupMissingEvidence(ctx context.Context) PassResult {
	files, err := r.listFiles(ctx)
	if err != nil {
		return PassResult{Pass: PassMissingEvidence, Aborted: true, Err: err}
	}
	return r.cleanupMissingEvidence(ctx, files)
}

// CleanupOrphanDevices lists the directory and runs the orphan pass.
func (r *reconciler) CleanupOrphanDevices(ctx context.Context) PassResult {
	files, err := r.listFiles(ctx)
	if err != nil {
		return PassResult{Pass: PassOrphanDevices, Aborted: true, Err: err}
	}
	return r.cleanupOrphanDevices(ctx, files)
}

// cleanupPlaceholders removes directory-sync records that can never gain
// evidence: no identified model, no file, no URL, no applicability text.
func (r *reconciler) cleanupPlaceholders(ctx context.Context, files fileSet) PassResult {
	pr := PassResult{Pass: PassPlaceholders}
	ctx = logging.WithPass(r.scope(ctx), string(PassPlaceholders))
	logger := logging.FromContext(ctx)

	for _, f := range r.state.Firmwares.List() {
		pr.Processed++
		if !isPlaceholder(f, files) {
			continue
		}
		if r.state.Firmwares.Remove(f.Key()) {
			pr.Removed++
			logger.Info().Str("firmware", f.Key()).Msg("Removed placeholder firmware")
		}
	}
	return pr
}

func isPlaceholder(f catalogs.Firmware, files fileSet) bool {
	return f.HasUnknownModel() &&
		f.Source == catalogs.SourceDirectorySync &&
		!files.has(f.Filename) &&
		f.DownloadURL == "" &&
		f.AppliedTo == ""
}

// cleanupMissingEvidence checks every non-manual record against the
// directory. A record whose file is gone may be re-matched to another file
// by version. Records that stay unmatched are deleted only when their model
// is UNKNOWN and their URL is missing or a placeholder; identified records
// are always kept.
func (r *reconciler) cleanupMissingEvidence(ctx context.Context, files fileSet) PassResult {
	pr := PassResult{Pass: PassMissingEvidence}
	ctx = logging.WithPass(r.scope(ctx), string(PassMissingEvidence))
	logger := logging.FromContext(ctx)

	for _, f := range r.state.Firmwares.List() {
		if !f.Source.RequiresEvidence() {
			continue
		}
		pr.Processed++
		if files.has(f.Filename) {
			continue
		}

		if name, ok := r.matchFileForRecord(f, files); ok {
			if r.state.Firmwares.BackfillFilename(f.Key(), name) {
				pr.Backfilled++
				logger.Info().Str("firmware", f.Key()).Str("filename", name).Msg("Re-matched firmware to artifact")
			}
			continue
		}

		if !f.HasUnknownModel() || f.HasURLEvidence() {
			continue
		}

		if r.state.Firmwares.Remove(f.Key()) {
			pr.Removed++
			evErr := &errors.EvidenceError{Key: f.Key(), Reason: "no artifact on disk and no download URL"}
			logger.Info().Err(evErr).Str("firmware", f.Key()).Msg("Removed firmware without evidence")
		}
	}
	return pr
}

// cleanupOrphanDevices removes UNKNOWN-model devices that no record uses
// and no on-disk artifact points at.
func (r *reconciler) cleanupOrphanDevices(ctx context.Context, files fileSet) PassResult {
	pr := PassResult{Pass: PassOrphanDevices}
	ctx = logging.WithPass(r.scope(ctx), string(PassOrphanDevices))
	logger := logging.FromContext(ctx)

	keep := r.state.Firmwares.ReferencedDevices()
	for id := range r.devicesReachableFromFiles(files) {
		keep[id] = true
	}

	for _, dev := range r.state.Devices.List() {
		pr.Processed++
		if dev.Model != constants.Unknown || keep[dev.ID] {
			continue
		}
		if r.state.Devices.Delete(dev.ID) {
			pr.Removed++
			logger.Info().Int("device_id", dev.ID).Str("hardware_version", dev.HardwareVersion).Msg("Removed orphan device")
		}
	}
	return pr
}

// devicesReachableFromFiles returns the devices an on-disk artifact maps to,
// either through the record that owns the file or through the model the
// filename names.
func (r *reconciler) devicesReachableFromFiles(files fileSet) map[int]bool {
	reach := make(map[int]bool)
	models := make(map[string]bool)
	for _, name := range files.names {
		if f, ok := r.state.Firmwares.ByFilename(name); ok {
			reach[f.DeviceID] = true
		}
		if id, ok := identify(name); ok && id.model != "" {
			models[id.model] = true
		}
	}
	if len(models) == 0 {
		return reach
	}
	for _, dev := range r.state.Devices.List() {
		if models[dev.Model] {
			reach[dev.ID] = true
		}
	}
	return reach
}
