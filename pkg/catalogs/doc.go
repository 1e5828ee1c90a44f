// Package catalogs holds the firmware catalog: the device table that
// assigns stable ids to (model, hardware version) pairs, the firmware map
// keyed by identity key, and the JSON store that persists both.
//
// Records are immutable once admitted, with one exception: a record created
// without a filename may have one backfilled when a later source confirms
// the artifact.
package catalogs
