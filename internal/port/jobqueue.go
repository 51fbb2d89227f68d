package port

import "github.com/alveera224/ReelEdit/internal/domain"

type JobQueue interface {
	Enqueue(videoID string) (*domain.Job, error)
	Claim() (*domain.Job, error)
	Complete(jobID int64) error
	Fail(jobID int64, errMsg string) error
	ResetStalled() error
}
