package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/port"
)

func runnerFixture(t *testing.T, duration float64, failCall map[int]error) (*SegmentRunner, *fakeSegmenter, *captureBus, *domain.Video, string) {
	t.Helper()
	dataDir := t.TempDir()

	source := filepath.Join(dataDir, "source.mp4")
	require.NoError(t, os.WriteFile(source, []byte("video bytes"), 0644))

	video := domain.NewVideo("clip.mp4", source, 11)
	segmenter := &fakeSegmenter{failCall: failCall}
	bus := &captureBus{}
	runner := NewSegmentRunner(&fakeProber{duration: duration}, segmenter, bus, dataDir)
	return runner, segmenter, bus, video, dataDir
}

func TestSegmentRunner_SplitsInto15SecondSlices(t *testing.T) {
	runner, segmenter, bus, video, dataDir := runnerFixture(t, 37, nil)

	segments, planned, err := runner.Run(context.Background(), video)
	require.NoError(t, err)
	assert.Equal(t, 3, planned)
	require.Len(t, segments, 3)

	// First slice starts at the stream head without a seek.
	assert.Equal(t, float64(0), segmenter.calls[0].SeekSeconds)
	assert.Equal(t, float64(15), segmenter.calls[0].Duration)
	assert.Equal(t, float64(15), segmenter.calls[1].SeekSeconds)
	assert.Equal(t, float64(30), segmenter.calls[2].SeekSeconds)
	assert.InDelta(t, 7, segmenter.calls[2].Duration, 0.0001)

	for i, seg := range segments {
		assert.Equal(t, i+1, seg.Index)
		assert.Equal(t, domain.SegmentID(video.ID, i+1), seg.ID)
		assert.FileExists(t, seg.StoredPath)
		assert.Equal(t, filepath.Join(dataDir, "segments", video.ID, seg.ID+".mp4"), seg.StoredPath)
	}

	progress := bus.byType(EventProgress)
	require.NotEmpty(t, progress)
	last := -1
	for _, e := range progress {
		assert.GreaterOrEqual(t, e.Percent, last)
		assert.Less(t, e.Percent, 100)
		assert.Equal(t, 3, e.TotalSegments)
		last = e.Percent
	}
}

func TestSegmentRunner_ProbeFailureIsFatal(t *testing.T) {
	dataDir := t.TempDir()
	runner := NewSegmentRunner(&fakeProber{err: errBoom}, &fakeSegmenter{}, &captureBus{}, dataDir)
	video := domain.NewVideo("clip.mp4", filepath.Join(dataDir, "missing.mp4"), 0)

	_, _, err := runner.Run(context.Background(), video)

	var probeErr *domain.ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.ErrorIs(t, err, errBoom)
	assert.NoDirExists(t, filepath.Join(dataDir, "segments", video.ID))
}

func TestSegmentRunner_TransientFailureLeavesGap(t *testing.T) {
	runner, _, _, video, _ := runnerFixture(t, 45, map[int]error{2: errors.New("encoder hiccup")})

	segments, planned, err := runner.Run(context.Background(), video)
	require.NoError(t, err)

	// Slice 2 failed once; the job keeps going and its index is absent,
	// but the plan still counted it.
	assert.Equal(t, 3, planned)
	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].Index)
	assert.Equal(t, 3, segments[1].Index)
}

func TestSegmentRunner_ThirdFailureAbortsAndDiscards(t *testing.T) {
	failures := map[int]error{
		1: errors.New("fail 1"),
		3: errors.New("fail 3"),
		5: errors.New("fail 5"),
	}
	runner, segmenter, bus, video, dataDir := runnerFixture(t, 75, failures)

	_, _, err := runner.Run(context.Background(), video)

	var segErr *domain.SegmentationError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, 3, segErr.Failures)

	// The run stops at the third failure: slice 5 of 5 never runs after it.
	assert.Len(t, segmenter.calls, 5)

	// Everything produced before the abort is discarded.
	outDir := filepath.Join(dataDir, "segments", video.ID)
	entries, readErr := os.ReadDir(outDir)
	if readErr == nil {
		assert.Empty(t, entries)
	}

	assert.Empty(t, bus.byType(EventFailed), "runner reports failure by error, not by event")
}

func TestSegmentRunner_EmptyOutputCountsAsFailure(t *testing.T) {
	runner, _, _, video, _ := runnerFixture(t, 10, nil)

	// A segmenter that reports success but leaves an empty file behind.
	runner.segmenter = segmenterFunc(func(ctx context.Context, req port.CutRequest, onProgress port.ProgressFunc) error {
		return os.WriteFile(req.OutputPath, nil, 0644)
	})

	segments, _, err := runner.Run(context.Background(), video)
	require.NoError(t, err)
	assert.Empty(t, segments)
}
