package reconciler

import (
	"context"

	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/sources"
)

// IngestReleases admits every advertised asset that no record claims by
// filename. Release notes are preferred over the asset name for model,
// version and date.
func (r *reconciler) IngestReleases(ctx context.Context) PassResult {
	pr := PassResult{Pass: PassReleases}
	if r.releases == nil {
		pr.Aborted = true
		return pr
	}

	ctx = logging.WithPass(r.scope(ctx), string(PassReleases))
	ctx = logging.WithSource(ctx, catalogs.SourceGitHubReleases.String())
	logger := logging.FromContext(ctx)

	releases, err := r.releases.ListReleases(ctx)
	if err != nil {
		pr.Aborted = true
		pr.Err = errors.WrapCollaborator(sources.ReleasesID.String(), "list releases", err)
		logger.Error().Err(err).Msg("Release listing failed, skipping release ingest")
		return pr
	}

	for _, rel := range releases {
		for _, asset := range rel.Assets {
			if !extract.HasArtifactExtension(asset.Name) {
				continue
			}
			if _, known := r.state.Firmwares.ByFilename(asset.Name); known {
				continue
			}
			pr.Processed++

			c, err := extract.FromRelease(rel.Body, asset.Name)
			if err != nil {
				pr.Skipped++
				logger.Debug().Err(err).Str("tag", rel.Tag).Str("asset", asset.Name).Msg("Skipping release asset")
				r.tick(ctx)
				continue
			}

			f := r.firmwareFrom(c, catalogs.SourceGitHubReleases)
			f.Filename = asset.Name
			f.DownloadURL = r.releases.DownloadURL(asset.Name)
			r.admit(ctx, f, &pr)
			r.tick(ctx)
		}
	}

	logger.Info().
		Int("processed", pr.Processed).
		Int("added", pr.Added).
		Int("backfilled", pr.Backfilled).
		Int("skipped", pr.Skipped).
		Msg("Release ingest complete")
	return pr
}

// IngestDirectory lists the artifact directory and admits unknown files.
func (r *reconciler) IngestDirectory(ctx context.Context) PassResult {
	files, err := r.listFiles(ctx)
	if err != nil {
		return PassResult{Pass: PassDirectory, Aborted: true, Err: err}
	}
	return r.ingestDirectory(ctx, files)
}

// ingestDirectory first tries to attach each unclaimed file to an existing
// record by version, so a file already known to another source does not
// produce a second record. Only unmatched files become new records, always
// with an UNKNOWN hardware version.
func (r *reconciler) ingestDirectory(ctx context.Context, files fileSet) PassResult {
	pr := PassResult{Pass: PassDirectory}
	ctx = logging.WithPass(r.scope(ctx), string(PassDirectory))
	ctx = logging.WithSource(ctx, catalogs.SourceDirectorySync.String())
	logger := logging.FromContext(ctx)

	for _, name := range files.names {
		if _, known := r.state.Firmwares.ByFilename(name); known {
			continue
		}
		pr.Processed++

		if known, ok := r.matchRecordForFile(name); ok {
			if r.state.Firmwares.BackfillFilename(known.Key(), name) {
				pr.Backfilled++
				logger.Info().Str("firmware", known.Key()).Str("filename", name).Msg("Backfilled filename")
			} else {
				pr.Duplicates++
				logger.Debug().
					Str("firmware", known.Key()).
					Str("filename", name).
					Str("known_as", known.Filename).
					Msg("Artifact already catalogued under another name")
			}
			r.tick(ctx)
			continue
		}

		c, err := extract.FromFilename(name)
		if err != nil {
			pr.Skipped++
			logger.Debug().Err(err).Str("filename", name).Msg("Skipping artifact")
			r.tick(ctx)
			continue
		}

		f := r.firmwareFrom(c, catalogs.SourceDirectorySync)
		r.admit(ctx, f, &pr)
		r.tick(ctx)
	}

	logger.Info().
		Int("files", len(files.names)).
		Int("processed", pr.Processed).
		Int("added", pr.Added).
		Int("backfilled", pr.Backfilled).
		Int("skipped", pr.Skipped).
		Int("duplicates", pr.Duplicates).
		Msg("Directory ingest complete")
	return pr
}

// IngestLive admits crawl fragments. Fragments are deduplicated by identity
// key within the batch, and a fragment whose only link is a licensing
// placeholder is rejected unless its artifact is already on disk.
func (r *reconciler) IngestLive(ctx context.Context, fragments []extract.Fragment) PassResult {
	pr := PassResult{Pass: PassLive}
	ctx = logging.WithPass(r.scope(ctx), string(PassLive))
	ctx = logging.WithSource(ctx, catalogs.SourceLive.String())
	logger := logging.FromContext(ctx)

	seen := make(map[string]bool, len(fragments))
	for _, frag := range fragments {
		pr.Processed++

		c, err := extract.FromFragment(frag, r.baseURL)
		if err != nil {
			pr.Skipped++
			logger.Debug().Err(err).Str("href", frag.Href).Msg("Skipping fragment")
			r.tick(ctx)
			continue
		}
		if seen[c.Key()] {
			pr.Duplicates++
			r.tick(ctx)
			continue
		}
		seen[c.Key()] = true

		f := r.firmwareFrom(c, catalogs.SourceLive)
		if f.Filename != "" && (r.directory == nil || !r.directory.Exists(f.Filename)) {
			f.Filename = ""
		}
		if f.Filename == "" && !f.HasURLEvidence() {
			pr.Skipped++
			evErr := &errors.EvidenceError{Key: f.Key(), Reason: "placeholder or missing download URL"}
			logger.Debug().Err(evErr).Str("href", frag.Href).Msg("Rejecting fragment")
			r.tick(ctx)
			continue
		}

		r.admit(ctx, f, &pr)
		r.tick(ctx)
	}

	logger.Info().
		Int("fragments", len(fragments)).
		Int("added", pr.Added).
		Int("duplicates", pr.Duplicates).
		Int("skipped", pr.Skipped).
		Msg("Live ingest complete")
	return pr
}

// firmwareFrom turns a candidate into a record. The device is resolved
// later, by admit, so rejected candidates never allocate one.
func (r *reconciler) firmwareFrom(c extract.Candidate, source catalogs.Source) catalogs.Firmware {
	return catalogs.Firmware{
		Model:           c.Model,
		HardwareVersion: c.HardwareVersion,
		Version:         c.Version,
		Date:            c.Date,
		DownloadURL:     c.DownloadURL,
		Filename:        c.Filename,
		SupportedModels: c.SupportedModels,
		AppliedTo:       c.AppliedTo,
		Changes:         c.Changes,
		Notes:           c.Notes,
		IsBeta:          c.IsBeta(),
		Source:          source,
	}
}

// admit upserts f. When the key is already taken, the existing record may
// still gain f's filename.
func (r *reconciler) admit(ctx context.Context, f catalogs.Firmware, pr *PassResult) {
	logger := logging.FromContext(logging.WithFirmware(ctx, f.Key()))
	if _, exists := r.state.Firmwares.Get(f.Key()); !exists {
		f.DeviceID = r.state.Devices.ResolveOrCreate(f.Model, f.HardwareVersion)
	}
	if r.state.Firmwares.Upsert(f) {
		pr.Added++
		logger.Info().Int("device_id", f.DeviceID).Msg("Added firmware")
		return
	}
	if r.state.Firmwares.BackfillFilename(f.Key(), f.Filename) {
		pr.Backfilled++
		logger.Info().Str("filename", f.Filename).Msg("Backfilled filename")
		return
	}
	pr.Duplicates++
	logger.Debug().Msg("Firmware already present")
}
