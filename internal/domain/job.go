package domain

import (
	"database/sql"
	"time"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// Job is one queued segmentation run for a video. At most one job per video
// id is ever pending or running; the orchestrator enforces that by claiming
// the video's processing state before enqueueing.
type Job struct {
	ID           int64
	VideoID      string
	Status       JobStatus
	ErrorMessage string
	Attempts     int64
	CreatedAt    time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
}
