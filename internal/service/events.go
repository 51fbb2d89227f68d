package service

import (
	"sync"

	"github.com/alveera224/ReelEdit/internal/domain"
)

type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is the unit published by the pipeline for external transports.
// Progress events repeat with a monotonic percent; completed and failed are
// each emitted exactly once per job and are terminal.
type Event struct {
	Type           EventType        `json:"type"`
	VideoID        string           `json:"videoId"`
	CurrentSegment int              `json:"currentSegment,omitempty"`
	TotalSegments  int              `json:"totalSegments,omitempty"`
	Percent        int              `json:"percent,omitempty"`
	Segments       []domain.Segment `json:"segments,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// EventPublisher is the sink the pipeline publishes into. The concrete
// transport (SSE, websockets, a log) is a collaborator behind this interface.
type EventPublisher interface {
	Publish(videoID string, event Event)
}

// EventBus fans events out to per-video subscribers.
type EventBus struct {
	subscribers map[string][]chan Event
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
	}
}

func (eb *EventBus) Subscribe(videoID string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 16)
	eb.subscribers[videoID] = append(eb.subscribers[videoID], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(videoID string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[videoID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[videoID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[videoID]) == 0 {
		delete(eb.subscribers, videoID)
	}
}

func (eb *EventBus) Publish(videoID string, event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[videoID] {
		select {
		case ch <- event:
		default:
			// Drop event if subscriber is slow
		}
	}
}

var _ EventPublisher = (*EventBus)(nil)
