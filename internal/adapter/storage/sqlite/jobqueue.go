package sqlite

import (
	"database/sql"
	"errors"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/port"
)

type JobQueue struct {
	db *sql.DB
}

func NewJobQueue(store *Store) *JobQueue {
	return &JobQueue{db: store.db}
}

func (q *JobQueue) Enqueue(videoID string) (*domain.Job, error) {
	row := q.db.QueryRow(`
		INSERT INTO jobs (video_id, status)
		VALUES (?, 'pending')
		RETURNING id, video_id, status, error_message, attempts, created_at, started_at, completed_at`,
		videoID,
	)
	return scanJob(row)
}

// Claim picks up the oldest pending job and marks it running in one
// statement, so concurrent workers never grab the same job. A nil job with
// a nil error means the queue is empty.
func (q *JobQueue) Claim() (*domain.Job, error) {
	row := q.db.QueryRow(`
		UPDATE jobs
		SET status = 'running', started_at = CURRENT_TIMESTAMP, attempts = attempts + 1
		WHERE id = (
			SELECT id FROM jobs WHERE status = 'pending' ORDER BY created_at, id LIMIT 1
		)
		RETURNING id, video_id, status, error_message, attempts, created_at, started_at, completed_at`,
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (q *JobQueue) Complete(jobID int64) error {
	_, err := q.db.Exec(`
		UPDATE jobs SET status = 'done', completed_at = CURRENT_TIMESTAMP WHERE id = ?`, jobID)
	return err
}

func (q *JobQueue) Fail(jobID int64, errMsg string) error {
	_, err := q.db.Exec(`
		UPDATE jobs SET status = 'failed', error_message = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?`, errMsg, jobID)
	return err
}

// ResetStalled requeues jobs left running by a previous process. With an
// in-memory database this only matters after an internal restart of the
// worker pool, but the recovery path costs nothing to keep.
func (q *JobQueue) ResetStalled() error {
	_, err := q.db.Exec(`
		UPDATE jobs SET status = 'pending', started_at = NULL WHERE status = 'running'`)
	return err
}

func scanJob(row *sql.Row) (*domain.Job, error) {
	var j domain.Job
	var status string
	if err := row.Scan(&j.ID, &j.VideoID, &status, &j.ErrorMessage, &j.Attempts,
		&j.CreatedAt, &j.StartedAt, &j.CompletedAt); err != nil {
		return nil, err
	}
	j.Status = domain.JobStatus(status)
	return &j, nil
}

var _ port.JobQueue = (*JobQueue)(nil)
