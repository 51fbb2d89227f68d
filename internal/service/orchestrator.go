package service

import (
	"fmt"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/port"
)

// Orchestrator owns the processing state machine per video id:
// idle -> processing -> completed|failed. Start is fire-and-forget: it claims
// the processing state, enqueues a job for the worker pool, and returns
// without waiting for any transcode work.
type Orchestrator struct {
	registry port.VideoRegistry
	jobQueue port.JobQueue
}

func NewOrchestrator(registry port.VideoRegistry, jobQueue port.JobQueue) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		jobQueue: jobQueue,
	}
}

// StartResult reports how a start request was resolved. AlreadyProcessed
// means the video had a completed job and its existing segments are returned
// instead of running a new one.
type StartResult struct {
	AlreadyProcessed bool
	Segments         []domain.Segment
}

// Start requests segmentation for a video id. A video already processing
// rejects with ErrAlreadyProcessing; a completed one resolves informationally
// with its existing segments. The claim is atomic in the registry, so two
// concurrent starts for the same id produce exactly one job.
func (o *Orchestrator) Start(videoID string) (*StartResult, error) {
	video, err := o.registry.Get(videoID)
	if err != nil {
		return nil, err
	}

	if video.Status == domain.VideoStatusCompleted {
		return &StartResult{AlreadyProcessed: true, Segments: video.Segments}, nil
	}

	claimed, err := o.registry.ClaimProcessing(videoID)
	if err != nil {
		return nil, fmt.Errorf("claim processing state: %w", err)
	}
	if !claimed {
		// Lost a race since the Get above: re-read to tell completed from
		// in-flight.
		video, err = o.registry.Get(videoID)
		if err != nil {
			return nil, err
		}
		if video.Status == domain.VideoStatusCompleted {
			return &StartResult{AlreadyProcessed: true, Segments: video.Segments}, nil
		}
		return nil, domain.ErrAlreadyProcessing
	}

	if _, err := o.jobQueue.Enqueue(videoID); err != nil {
		_ = o.registry.MarkFailed(videoID, fmt.Sprintf("enqueue job: %v", err))
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	logger.Info.Printf("segmentation started: video=%s", videoID)
	return &StartResult{}, nil
}
