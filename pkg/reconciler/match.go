package reconciler

import (
	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/normalize"
)

// fileIdentity is what an artifact name says about itself.
type fileIdentity struct {
	model   string
	version normalize.Version
}

func identify(name string) (fileIdentity, bool) {
	v, ok := extract.Version(name)
	if !ok {
		return fileIdentity{}, false
	}
	id := fileIdentity{version: normalize.ParseVersion(v)}
	if m, ok := extract.Model(name); ok {
		id.model = normalize.Model(m)
	}
	return id, true
}

// compatible reports whether a record with model could describe the file.
// A file that names no model matches any record; an UNKNOWN record matches
// any file.
func (id fileIdentity) compatible(model string) bool {
	return id.model == "" || model == constants.Unknown || model == id.model
}

// matchRecordForFile finds the record an unclaimed file belongs to.
// Records without a filename are preferred, so the match can be
// backfilled. A record that already has a different filename matches only
// when the file names the same model. A file that names no model must
// match exactly one record without a filename.
func (r *reconciler) matchRecordForFile(name string) (catalogs.Firmware, bool) {
	id, ok := identify(name)
	if !ok {
		return catalogs.Firmware{}, false
	}

	var exact, loose, named []catalogs.Firmware
	for _, f := range r.state.Firmwares.List() {
		if !id.compatible(f.Model) || f.ParsedVersion().Compare(id.version) != 0 {
			continue
		}
		exactModel := id.model != "" && f.Model == id.model
		switch {
		case f.Filename != "":
			if exactModel {
				named = append(named, f)
			}
		case exactModel:
			exact = append(exact, f)
		default:
			loose = append(loose, f)
		}
	}

	switch {
	case len(exact) > 0:
		return exact[0], true
	case id.model == "" && len(loose) == 1:
		return loose[0], true
	case id.model != "" && len(loose) > 0:
		return loose[0], true
	case len(named) > 0:
		return named[0], true
	}
	return catalogs.Firmware{}, false
}

// matchFileForRecord finds an on-disk file that f plausibly describes and
// that no other record claims.
func (r *reconciler) matchFileForRecord(f catalogs.Firmware, files fileSet) (string, bool) {
	want := f.ParsedVersion()
	if want.IsUnparsed() {
		return "", false
	}
	for _, name := range files.names {
		if owner, claimed := r.state.Firmwares.ByFilename(name); claimed && owner.Key() != f.Key() {
			continue
		}
		id, ok := identify(name)
		if !ok || id.version.Compare(want) != 0 {
			continue
		}
		if id.compatible(f.Model) {
			return name, true
		}
	}
	return "", false
}
