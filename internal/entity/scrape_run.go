package entity

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the outcome of one scrape run.
type RunStatus string

const (
	RunSucceeded RunStatus = "success"
	RunEmpty     RunStatus = "empty"
	RunFailed    RunStatus = "failed"
)

// ScrapeRun describes one render plus extraction cycle. It is an audit entry;
// the records themselves are never stored.
type ScrapeRun struct {
	ID            uuid.UUID
	Site          string
	Status        RunStatus
	RecordCount   int
	HeadlineFound bool
	FailureReason string
	StartedAt     time.Time
	Duration      time.Duration
}
