package service

import (
	"context"
	"time"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/metrics"
	"github.com/alveera224/ReelEdit/internal/port"
)

// WorkerPool drains the job queue in the background so start requests never
// block on transcoding. Jobs for different videos may run concurrently, one
// per worker; within a job the runner keeps segment invocations sequential.
type WorkerPool struct {
	jobQueue port.JobQueue
	registry port.VideoRegistry
	runner   *SegmentRunner
	events   EventPublisher
	workers  int
}

func NewWorkerPool(jobQueue port.JobQueue, registry port.VideoRegistry, runner *SegmentRunner, events EventPublisher, workers int) *WorkerPool {
	return &WorkerPool{
		jobQueue: jobQueue,
		registry: registry,
		runner:   runner,
		events:   events,
		workers:  workers,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	// Reset any jobs left running by a previous crash of the pool
	if err := wp.jobQueue.ResetStalled(); err != nil {
		logger.Error.Printf("failed to reset stalled jobs: %v", err)
	}

	for i := range wp.workers {
		go wp.runWorker(ctx, i)
	}
	logger.Info.Printf("started %d workers", wp.workers)
}

func (wp *WorkerPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("worker %d shutting down", id)
			return
		default:
		}

		job, err := wp.jobQueue.Claim()
		if err != nil {
			logger.Error.Printf("worker %d: failed to claim job: %v", id, err)
			time.Sleep(2 * time.Second)
			continue
		}

		if job == nil {
			// No pending jobs, wait before polling again
			time.Sleep(500 * time.Millisecond)
			continue
		}

		logger.Info.Printf("worker %d: processing job %d (video=%s)", id, job.ID, job.VideoID)
		wp.processJob(ctx, job)
	}
}

func (wp *WorkerPool) processJob(ctx context.Context, job *domain.Job) {
	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	video, err := wp.registry.Get(job.VideoID)
	if err != nil {
		wp.failJob(job, err)
		return
	}

	segments, planned, err := wp.runner.Run(ctx, video)
	if err != nil {
		if markErr := wp.registry.MarkFailed(job.VideoID, err.Error()); markErr != nil {
			logger.Error.Printf("failed to record failure for video %s: %v", job.VideoID, markErr)
		}
		wp.failJob(job, err)
		return
	}

	if err := wp.registry.MarkCompleted(job.VideoID, segments); err != nil {
		wp.failJob(job, err)
		return
	}

	wp.publish(job.VideoID, Event{
		Type:           EventProgress,
		VideoID:        job.VideoID,
		CurrentSegment: len(segments),
		TotalSegments:  planned,
		Percent:        100,
	})
	wp.publish(job.VideoID, Event{
		Type:     EventCompleted,
		VideoID:  job.VideoID,
		Segments: segments,
	})

	_ = wp.jobQueue.Complete(job.ID)
	metrics.JobsTotal.WithLabelValues("completed").Inc()
	logger.Info.Printf("job %d completed: video=%s segments=%d", job.ID, job.VideoID, len(segments))
}

func (wp *WorkerPool) failJob(job *domain.Job, err error) {
	logger.Error.Printf("job %d failed: %v", job.ID, err)
	_ = wp.jobQueue.Fail(job.ID, err.Error())
	wp.publish(job.VideoID, Event{
		Type:    EventFailed,
		VideoID: job.VideoID,
		Error:   err.Error(),
	})
	metrics.JobsTotal.WithLabelValues("failed").Inc()
}

func (wp *WorkerPool) publish(videoID string, event Event) {
	if wp.events != nil {
		wp.events.Publish(videoID, event)
	}
}
