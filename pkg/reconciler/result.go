package reconciler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/utc"

	"github.com/agentstation/fwmap/pkg/catalogs"
)

// Pass names one step of a run.
type Pass string

// Passes, in run order. Live and manual ingest run outside Run.
const (
	PassReleases        Pass = "releases"
	PassDirectory       Pass = "directory"
	PassPlaceholders    Pass = "placeholders"
	PassMissingEvidence Pass = "missing_evidence"
	PassOrphanDevices   Pass = "orphan_devices"
	PassLive            Pass = "live"
	PassManual          Pass = "manual"
)

// PassResult counts what one pass did.
type PassResult struct {
	Pass       Pass
	Processed  int
	Added      int
	Backfilled int
	Removed    int
	Skipped    int
	Duplicates int

	// Aborted is set when the pass did not run to completion; Err says why.
	Aborted bool
	Err     error
}

// Result is the outcome of one run.
type Result struct {
	RunID    string
	Passes   []PassResult
	Errors   []error
	Metadata ResultMetadata

	// Artifacts is the number of archives found in the directory, or -1
	// when the directory was not read.
	Artifacts int
}

// ResultMetadata holds run timing.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewResult starts a result with a fresh run id.
func NewResult() *Result {
	return &Result{
		RunID:     uuid.NewString(),
		Errors:    []error{},
		Metadata:  ResultMetadata{StartTime: time.Now()},
		Artifacts: -1,
	}
}

// Record appends a pass and collects its error.
func (r *Result) Record(p PassResult) {
	r.Passes = append(r.Passes, p)
	if p.Err != nil {
		r.Errors = append(r.Errors, p.Err)
	}
}

// Finalize stamps the end time.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// IsSuccess reports whether no collaborator failed.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// Pass returns the result of the named pass.
func (r *Result) Pass(name Pass) (PassResult, bool) {
	for _, p := range r.Passes {
		if p.Pass == name {
			return p, true
		}
	}
	return PassResult{}, false
}

// Added is the number of records created across all passes.
func (r *Result) Added() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Added
	}
	return n
}

// Removed is the number of records and devices deleted across all passes.
func (r *Result) Removed() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Removed
	}
	return n
}

// Backfilled is the number of filenames backfilled across all passes.
func (r *Result) Backfilled() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Backfilled
	}
	return n
}

// Summary renders a one-line description of the run.
func (r *Result) Summary() string {
	parts := []string{
		fmt.Sprintf("%d added", r.Added()),
		fmt.Sprintf("%d backfilled", r.Backfilled()),
		fmt.Sprintf("%d removed", r.Removed()),
	}
	if !r.IsSuccess() {
		return fmt.Sprintf("Reconciliation finished with %d errors: %s", len(r.Errors), strings.Join(parts, ", "))
	}
	return "Reconciliation finished: " + strings.Join(parts, ", ")
}

// Status builds the status document for a catalog holding found records.
func (r *Result) Status(found int) catalogs.Status {
	errs := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		errs = append(errs, err.Error())
	}
	return catalogs.Status{
		RunID:          r.RunID,
		LastRun:        utc.Now(),
		Status:         catalogs.Classify(errs, r.Added()),
		FirmwaresFound: found,
		NewFirmwares:   r.Added(),
		Errors:         errs,
	}
}
