package service

import (
	"math"
	"sync"
)

// progressTracker folds per-segment percent events into one cumulative
// job percent: floor(((i-1)/total)*100 + segPercent/total). The reported
// value never decreases, even if the engine's raw percent jitters backwards.
// Callbacks from the converter arrive on its own goroutine, so access to
// last is serialized.
type progressTracker struct {
	total int

	mu   sync.Mutex
	last int
}

func newProgressTracker(total int) *progressTracker {
	return &progressTracker{total: total}
}

// Observe returns the overall percent after segment index (1-based) reports
// segPercent of its own work done.
func (p *progressTracker) Observe(index int, segPercent float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total <= 0 {
		return p.last
	}
	if segPercent < 0 {
		segPercent = 0
	}
	if segPercent > 100 {
		segPercent = 100
	}
	overall := int(math.Floor(float64(index-1)/float64(p.total)*100 + segPercent/float64(p.total)))
	// Hold back 100 until the job commits; only Finish reports it.
	if overall > 99 {
		overall = 99
	}
	if overall > p.last {
		p.last = overall
	}
	return p.last
}

// Finish pins the tracker at 100, for the completion event.
func (p *progressTracker) Finish() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = 100
	return p.last
}
