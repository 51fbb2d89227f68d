package port

import "github.com/alveera224/ReelEdit/internal/domain"

// VideoRegistry is the process-lifetime store of every known video and its
// segments. It is the single source of truth for processing state: status
// queries and the streaming layer read it concurrently while at most one
// writer (the orchestrator for that video id) mutates a given record.
type VideoRegistry interface {
	Save(v *domain.Video) error
	Get(id string) (*domain.Video, error)
	ListAll() ([]*domain.Video, error)
	Delete(id string) error

	// ClaimProcessing atomically transitions the video from idle or failed
	// to processing. It reports false when the record is already processing
	// or completed, which is how single-flight is enforced.
	ClaimProcessing(id string) (bool, error)

	// MarkCompleted replaces the video's segment list and sets the terminal
	// completed state.
	MarkCompleted(id string, segments []domain.Segment) error

	// MarkFailed sets the terminal failed state with a human-readable error.
	MarkFailed(id string, errMsg string) error

	// GetSegment resolves a segment id to its record by scanning the owning
	// video's segment list.
	GetSegment(segmentID string) (*domain.Segment, error)
}
