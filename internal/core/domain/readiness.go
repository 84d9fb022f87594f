package domain

import "time"

// ReadinessState is the state of the ingestion pipeline.
type ReadinessState int

const (
	// StateNotReady means the collection has not been built in this process.
	StateNotReady ReadinessState = iota

	// StateReady means ingestion completed. It is terminal for the process.
	StateReady
)

// String returns the string representation of the state.
func (s ReadinessState) String() string {
	switch s {
	case StateNotReady:
		return "NOT_READY"
	case StateReady:
		return "READY"
	default:
		return unknownDescription
	}
}

// SkippedFile records a document that ingestion could not index.
type SkippedFile struct {
	Name string
	Err  error
}

// IngestReport summarises a completed ingestion run.
type IngestReport struct {
	// Collection is the collection name.
	Collection string

	// Indexed lists the IDs upserted in this run, in processing order.
	Indexed []string

	// Skipped lists files that failed extraction, embedding or upsert.
	Skipped []SkippedFile

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Total returns the number of files considered.
func (r *IngestReport) Total() int {
	return len(r.Indexed) + len(r.Skipped)
}
