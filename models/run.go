package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial" // collector stalled mid-run; gathered items were kept
	RunStatusFailed    RunStatus = "failed"
)

// CollectionRun records one collector execution against one source.
type CollectionRun struct {
	ID              int64      `json:"id" db:"id"`
	Source          string     `json:"source" db:"source"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	Status          RunStatus  `json:"status" db:"status"`
	ListingsFound   int        `json:"listings_found" db:"listings_found"`
	ListingsCreated int        `json:"listings_created" db:"listings_created"`
	DuplicateSkips  int        `json:"duplicate_skips" db:"duplicate_skips"`
	MalformedSkips  int        `json:"malformed_skips" db:"malformed_skips"`
	ErrorsCount     int        `json:"errors_count" db:"errors_count"`
	ErrorMessage    string     `json:"error_message" db:"error_message"`
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// CollectionLog is an operational log line tied to a run.
type CollectionLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	Source    string    `json:"source" db:"source"`
}
