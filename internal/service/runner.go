package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/metrics"
	"github.com/alveera224/ReelEdit/internal/port"
)

// maxSegmentFailures is the fatal threshold: once this many segment
// invocations have failed within one job, the job aborts and discards
// everything it produced.
const maxSegmentFailures = 3

// SegmentRunner executes one segmentation job end to end: probe the source
// duration, plan the fixed-length slices, and issue one transcode invocation
// per slice, strictly in index order, one at a time.
type SegmentRunner struct {
	prober      port.Prober
	segmenter   port.Segmenter
	events      EventPublisher
	segmentsDir string
}

func NewSegmentRunner(prober port.Prober, segmenter port.Segmenter, events EventPublisher, dataDir string) *SegmentRunner {
	return &SegmentRunner{
		prober:      prober,
		segmenter:   segmenter,
		events:      events,
		segmentsDir: filepath.Join(dataDir, "segments"),
	}
}

// Run produces the segment files for one video and returns the records of
// the slices that exist on disk afterwards, plus the planned segment count.
// Transient per-segment failures leave a gap in the returned list; reaching
// the fatal threshold returns a *domain.SegmentationError and nothing is
// committed.
func (r *SegmentRunner) Run(ctx context.Context, video *domain.Video) ([]domain.Segment, int, error) {
	duration, err := r.prober.Duration(ctx, video.StoredPath)
	if err != nil {
		return nil, 0, &domain.ProbeError{Path: video.StoredPath, Err: err}
	}

	plan := domain.PlanSegments(video.ID, duration)
	if len(plan) == 0 {
		return nil, 0, &domain.ProbeError{Path: video.StoredPath, Err: fmt.Errorf("zero-length media")}
	}

	outDir := filepath.Join(r.segmentsDir, video.ID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, len(plan), fmt.Errorf("create segment directory: %w", err)
	}

	logger.Info.Printf("segmenting video=%s duration=%s segments=%d", video.ID, domain.FormatDuration(duration), len(plan))

	tracker := newProgressTracker(len(plan))
	completed := make([]domain.Segment, 0, len(plan))
	failures := 0
	var lastErr error

	for _, seg := range plan {
		seg.StoredPath = filepath.Join(outDir, seg.ID+".mp4")

		req := port.CutRequest{
			InputPath:  video.StoredPath,
			OutputPath: seg.StoredPath,
			Duration:   seg.Duration,
		}
		if seg.Index > 1 {
			// The first slice reads from the stream start; seeking the
			// input at offset zero is inaccurate around keyframes.
			req.SeekSeconds = seg.StartSeconds
		}

		index := seg.Index
		started := time.Now()
		err := r.segmenter.Cut(ctx, req, func(percent float64) {
			r.publishProgress(video.ID, index, len(plan), tracker.Observe(index, percent))
		})
		metrics.SegmentEncodeDuration.Observe(time.Since(started).Seconds())

		if err == nil {
			err = verifyOutput(seg.StoredPath)
		}
		if err != nil {
			failures++
			lastErr = err
			metrics.SegmentsTotal.WithLabelValues("error").Inc()
			logger.Error.Printf("segment %d/%d failed for video=%s: %v", seg.Index, len(plan), video.ID, err)

			if failures >= maxSegmentFailures {
				r.discard(outDir, completed)
				return nil, len(plan), &domain.SegmentationError{Failures: failures, LastErr: lastErr}
			}
			continue
		}

		completed = append(completed, seg)
		metrics.SegmentsTotal.WithLabelValues("ok").Inc()
		r.publishProgress(video.ID, seg.Index, len(plan), tracker.Observe(seg.Index, 100))
	}

	return completed, len(plan), nil
}

func (r *SegmentRunner) publishProgress(videoID string, current, total, percent int) {
	if r.events == nil {
		return
	}
	r.events.Publish(videoID, Event{
		Type:           EventProgress,
		VideoID:        videoID,
		CurrentSegment: current,
		TotalSegments:  total,
		Percent:        percent,
	})
}

// verifyOutput guards against invocations that report success but leave no
// usable file behind.
func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("segment output missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("segment output %s is empty", path)
	}
	return nil
}

// discard removes everything a fatally failed run produced. The job never
// partially commits.
func (r *SegmentRunner) discard(outDir string, produced []domain.Segment) {
	for _, seg := range produced {
		if err := os.Remove(seg.StoredPath); err != nil && !os.IsNotExist(err) {
			logger.Warn.Printf("failed to discard segment %s: %v", seg.StoredPath, err)
		}
	}
	if err := os.Remove(outDir); err != nil && !os.IsNotExist(err) {
		// Directory may hold partial engine output; best effort only.
		_ = os.RemoveAll(outDir)
	}
}
