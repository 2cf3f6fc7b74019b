package provision

import "fmt"

// Outcome classifies what happened to one roster entity during a batch
// operation.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyExists Outcome = "already-exists"
	OutcomeAdded         Outcome = "added"
	OutcomeAlreadyMember Outcome = "already-member"
	OutcomeUnexpected    Outcome = "unexpected"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFailed        Outcome = "failed"
)

// Entry records the outcome for a single entity (student, group, or
// repository).
type Entry struct {
	Entity  string  `json:"entity"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Report accumulates per-entity outcomes across a batch operation so the
// engine can isolate failures instead of aborting siblings. The caller
// receives the full ledger, not a single pass/fail boolean.
type Report struct {
	Entries []Entry `json:"entries"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Record appends a non-failure outcome for an entity.
func (r *Report) Record(entity string, outcome Outcome) {
	r.Entries = append(r.Entries, Entry{Entity: entity, Outcome: outcome})
}

// RecordError appends a failure outcome for an entity.
func (r *Report) RecordError(entity string, err error) {
	r.Entries = append(r.Entries, Entry{Entity: entity, Outcome: OutcomeFailed, Err: err})
}

// Succeeded returns the entities that were created, already present, or
// added, in processing order.
func (r *Report) Succeeded() []string {
	var names []string
	for _, entry := range r.Entries {
		switch entry.Outcome {
		case OutcomeCreated, OutcomeAlreadyExists, OutcomeAdded, OutcomeAlreadyMember:
			names = append(names, entry.Entity)
		}
	}
	return names
}

// Failed returns a map of entity to error for every failed entry.
func (r *Report) Failed() map[string]error {
	failed := make(map[string]error)
	for _, entry := range r.Entries {
		if entry.Outcome == OutcomeFailed {
			failed[entry.Entity] = entry.Err
		}
	}
	return failed
}

// Unexpected returns entities observed remotely but absent from the roster.
func (r *Report) Unexpected() []string {
	var names []string
	for _, entry := range r.Entries {
		if entry.Outcome == OutcomeUnexpected {
			names = append(names, entry.Entity)
		}
	}
	return names
}

// HasFailures reports whether any entry failed.
func (r *Report) HasFailures() bool {
	for _, entry := range r.Entries {
		if entry.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Summary returns a one-line description of the report.
func (r *Report) Summary() string {
	counts := make(map[Outcome]int)
	for _, entry := range r.Entries {
		counts[entry.Outcome]++
	}
	return fmt.Sprintf("%d processed, %d failed, %d skipped, %d unexpected",
		len(r.Entries), counts[OutcomeFailed], counts[OutcomeSkipped], counts[OutcomeUnexpected])
}
