package service

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/port"
)

// fakeRegistry is an in-memory port.VideoRegistry for tests.
type fakeRegistry struct {
	mu     sync.Mutex
	videos map[string]*domain.Video

	saveErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{videos: make(map[string]*domain.Video)}
}

func (f *fakeRegistry) Save(v *domain.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *v
	f.videos[v.ID] = &clone
	return nil
}

func (f *fakeRegistry) Get(id string) (*domain.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (f *fakeRegistry) ListAll() ([]*domain.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Video, 0, len(f.videos))
	for _, v := range f.videos {
		clone := *v
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeRegistry) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeRegistry) ClaimProcessing(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if v.Status != domain.VideoStatusIdle && v.Status != domain.VideoStatusFailed {
		return false, nil
	}
	v.Status = domain.VideoStatusProcessing
	v.LastError = ""
	return true, nil
}

func (f *fakeRegistry) MarkCompleted(id string, segments []domain.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = domain.VideoStatusCompleted
	v.LastError = ""
	v.Segments = segments
	return nil
}

func (f *fakeRegistry) MarkFailed(id string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = domain.VideoStatusFailed
	v.LastError = errMsg
	return nil
}

func (f *fakeRegistry) GetSegment(segmentID string) (*domain.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.videos {
		for i := range v.Segments {
			if v.Segments[i].ID == segmentID {
				seg := v.Segments[i]
				return &seg, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

var _ port.VideoRegistry = (*fakeRegistry)(nil)

// fakeQueue records enqueued jobs.
type fakeQueue struct {
	mu         sync.Mutex
	jobs       []*domain.Job
	nextID     int64
	enqueueErr error
	completed  []int64
	failed     []int64
}

func (q *fakeQueue) Enqueue(videoID string) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return nil, q.enqueueErr
	}
	q.nextID++
	job := &domain.Job{ID: q.nextID, VideoID: videoID, Status: domain.JobStatusPending}
	q.jobs = append(q.jobs, job)
	return job, nil
}

func (q *fakeQueue) Claim() (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusRunning
			return job, nil
		}
	}
	return nil, nil
}

func (q *fakeQueue) Complete(jobID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, jobID)
	return nil
}

func (q *fakeQueue) Fail(jobID int64, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, jobID)
	return nil
}

func (q *fakeQueue) ResetStalled() error { return nil }

var _ port.JobQueue = (*fakeQueue)(nil)

// fakeProber returns a fixed duration or error.
type fakeProber struct {
	duration float64
	err      error
}

func (p *fakeProber) Duration(ctx context.Context, path string) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.duration, nil
}

// fakeSegmenter writes a stub output file per cut and can be told to fail
// particular invocations (keyed by 1-based call number).
type fakeSegmenter struct {
	mu       sync.Mutex
	calls    []port.CutRequest
	failCall map[int]error
}

func (s *fakeSegmenter) Cut(ctx context.Context, req port.CutRequest, onProgress port.ProgressFunc) error {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	call := len(s.calls)
	s.mu.Unlock()

	if err, ok := s.failCall[call]; ok {
		return err
	}
	if onProgress != nil {
		// The real adapter delivers progress from its pipe-reader
		// goroutine; mirror that so races in the consumer surface.
		done := make(chan struct{})
		go func() {
			defer close(done)
			onProgress(50)
			onProgress(100)
		}()
		<-done
	}
	return os.WriteFile(req.OutputPath, []byte("segment data"), 0644)
}

// segmenterFunc adapts a function to port.Segmenter.
type segmenterFunc func(ctx context.Context, req port.CutRequest, onProgress port.ProgressFunc) error

func (f segmenterFunc) Cut(ctx context.Context, req port.CutRequest, onProgress port.ProgressFunc) error {
	return f(ctx, req, onProgress)
}

// captureBus records every published event in order.
type captureBus struct {
	mu     sync.Mutex
	events []Event
}

func (b *captureBus) Publish(videoID string, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBus) all() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

func (b *captureBus) byType(t EventType) []Event {
	var out []Event
	for _, e := range b.all() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var errBoom = fmt.Errorf("boom")
