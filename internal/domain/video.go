package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// SegmentSeconds is the fixed nominal length of every segment. The final
// segment of a video is clipped by the source's own end and may be shorter.
const SegmentSeconds = 15.0

type VideoStatus string

const (
	VideoStatusIdle       VideoStatus = "idle"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// Video is one uploaded source file tracked by the registry. StoredPath
// always points at a fully written file for the lifetime of the record;
// Segments stays empty until a segmentation job completes.
type Video struct {
	ID           string      `json:"id"`
	OriginalName string      `json:"originalName"`
	StoredPath   string      `json:"path"`
	SizeBytes    int64       `json:"size"`
	Status       VideoStatus `json:"status"`
	LastError    string      `json:"error,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	Segments     []Segment   `json:"segments"`
}

// Segment is one fixed-duration slice of its parent video. Index is 1-based
// and strictly increasing within a video; indices that permanently failed
// are simply absent from the list.
type Segment struct {
	ID           string  `json:"id"`
	VideoID      string  `json:"videoId"`
	Index        int     `json:"index"`
	StartSeconds float64 `json:"startTime"`
	Duration     float64 `json:"duration"`
	StoredPath   string  `json:"path"`
}

func NewVideo(originalName, storedPath string, sizeBytes int64) *Video {
	return &Video{
		ID:           uuid.NewString(),
		OriginalName: originalName,
		StoredPath:   storedPath,
		SizeBytes:    sizeBytes,
		Status:       VideoStatusIdle,
		CreatedAt:    time.Now(),
	}
}

// SegmentID derives the stable identifier for one segment of a video.
func SegmentID(videoID string, index int) string {
	return fmt.Sprintf("%s_segment_%d", videoID, index)
}

// PlanSegments computes the segment plan for a source of the given total
// duration: ceil(duration/SegmentSeconds) slices, slice i covering
// [(i-1)*15, min(i*15, duration)). Paths are filled in by the runner.
func PlanSegments(videoID string, totalDuration float64) []Segment {
	if totalDuration <= 0 {
		return nil
	}
	count := int(math.Ceil(totalDuration / SegmentSeconds))
	plan := make([]Segment, count)
	for i := range plan {
		start := float64(i) * SegmentSeconds
		plan[i] = Segment{
			ID:           SegmentID(videoID, i+1),
			VideoID:      videoID,
			Index:        i + 1,
			StartSeconds: start,
			Duration:     math.Min(SegmentSeconds, totalDuration-start),
		}
	}
	return plan
}

// MarkCompleted records the final segment list for a successful job.
func (v *Video) MarkCompleted(segments []Segment) {
	v.Status = VideoStatusCompleted
	v.LastError = ""
	v.Segments = segments
}

// MarkFailed records the terminal error of a failed job.
func (v *Video) MarkFailed(err error) {
	v.Status = VideoStatusFailed
	v.LastError = err.Error()
}

// SegmentByID scans the video's segment list for the given segment id.
func (v *Video) SegmentByID(segmentID string) *Segment {
	for i := range v.Segments {
		if v.Segments[i].ID == segmentID {
			return &v.Segments[i]
		}
	}
	return nil
}
