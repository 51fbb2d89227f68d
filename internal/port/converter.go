package port

import "context"

// CutRequest bounds one transcode invocation to a slice of source time.
// SeekSeconds is zero for the first segment: seeking the input at offset
// zero trips keyframe-seek inaccuracies in the engine, so the first slice
// reads from the start of the stream instead.
type CutRequest struct {
	InputPath   string
	OutputPath  string
	SeekSeconds float64
	Duration    float64
}

// ProgressFunc receives the engine's percent-complete (0-100) for the
// invocation it was passed to. It may be called from another goroutine,
// but never after Cut has returned.
type ProgressFunc func(percent float64)

// Prober inspects a media file. Duration blocks for the length of the
// inspection call; callers run it off the request path.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Segmenter produces one streamable sub-clip per call. Cut blocks until the
// engine exits; progress events arrive through onProgress while it runs.
type Segmenter interface {
	Cut(ctx context.Context, req CutRequest, onProgress ProgressFunc) error
}
