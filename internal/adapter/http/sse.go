package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/service"
)

type SSEHandler struct {
	eventBus *service.EventBus
	videoSvc VideoService
}

func NewSSEHandler(eventBus *service.EventBus, videoSvc VideoService) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		videoSvc: videoSvc,
	}
}

// sseWrite writes one named SSE event with a JSON payload.
func sseWrite(w http.ResponseWriter, eventName string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error.Printf("marshal sse event: %v", err)
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// terminalEvent reconstructs the terminal event for a video that finished
// before the client connected, so late subscribers still get closure.
func terminalEvent(video *domain.Video) (service.Event, bool) {
	switch video.Status {
	case domain.VideoStatusCompleted:
		return service.Event{
			Type:     service.EventCompleted,
			VideoID:  video.ID,
			Segments: video.Segments,
		}, true
	case domain.VideoStatusFailed:
		return service.Event{
			Type:    service.EventFailed,
			VideoID: video.ID,
			Error:   video.LastError,
		}, true
	}
	return service.Event{}, false
}

func (h *SSEHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		video, err := h.videoSvc.Get(id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "video not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load video")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		// Already terminal: send the final event and hold the stream open
		// until the client goes away.
		if event, terminal := terminalEvent(video); terminal {
			sseWrite(w, string(event.Type), event)
			<-r.Context().Done()
			return
		}

		ch := h.eventBus.Subscribe(id)
		defer h.eventBus.Unsubscribe(id, ch)

		// The job can reach a terminal state between the status check and
		// the subscription; re-read so that window cannot strand the client
		// with keep-alives and no closing event.
		if video, err := h.videoSvc.Get(id); err == nil {
			if event, terminal := terminalEvent(video); terminal {
				sseWrite(w, string(event.Type), event)
				<-r.Context().Done()
				return
			}
		}

		ctx := r.Context()
		keepAlive := time.NewTicker(15 * time.Second)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case event, ok := <-ch:
				if !ok {
					return
				}
				sseWrite(w, string(event.Type), event)
				if event.Type == service.EventCompleted || event.Type == service.EventFailed {
					<-ctx.Done()
					return
				}
			}
		}
	}
}
