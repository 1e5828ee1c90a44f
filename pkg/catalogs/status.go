package catalogs

import "github.com/agentstation/utc"

// RunOutcome classifies a finished run.
type RunOutcome string

// Run outcomes
const (
	OutcomeSuccess        RunOutcome = "success"
	OutcomeNoNewFirmwares RunOutcome = "no_new_firmwares"
	OutcomeError          RunOutcome = "error"
)

// Status is the status.json document written after every run.
type Status struct {
	RunID          string     `json:"run_id"`
	LastRun        utc.Time   `json:"last_run"`
	Status         RunOutcome `json:"status"`
	FirmwaresFound int        `json:"firmwares_found"`
	NewFirmwares   int        `json:"new_firmwares"`
	Errors         []string   `json:"errors"`
}

// Classify derives the outcome from errors and the number of new records.
func Classify(errs []string, added int) RunOutcome {
	switch {
	case len(errs) > 0:
		return OutcomeError
	case added > 0:
		return OutcomeSuccess
	default:
		return OutcomeNoNewFirmwares
	}
}
