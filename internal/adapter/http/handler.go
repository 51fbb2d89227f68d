package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/alveera224/ReelEdit/internal/adapter/http/validation"
	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/metrics"
	"github.com/alveera224/ReelEdit/internal/service"
)

// VideoService is the registry-facing surface the handlers need.
type VideoService interface {
	Register(originalName, tmpPath string) (*domain.Video, error)
	Get(id string) (*domain.Video, error)
	ListAll() ([]*domain.Video, error)
	Segments(id string) ([]domain.Segment, error)
	GetSegment(segmentID string) (*domain.Segment, error)
	Delete(id string) error
}

// ProcessService starts segmentation jobs.
type ProcessService interface {
	Start(videoID string) (*service.StartResult, error)
}

type Handlers struct {
	videoSvc   VideoService
	processSvc ProcessService
	maxSizeMB  int
}

func NewHandlers(videoSvc VideoService, processSvc ProcessService, maxSizeMB int) *Handlers {
	return &Handlers{
		videoSvc:   videoSvc,
		processSvc: processSvc,
		maxSizeMB:  maxSizeMB,
	}
}

func (h *Handlers) Upload() http.HandlerFunc {
	maxBytes := int64(h.maxSizeMB) * 1024 * 1024
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d MB limit", h.maxSizeMB))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid multipart request body")
			return
		}

		file, header, err := r.FormFile("video")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no video file uploaded")
			return
		}
		defer file.Close() //nolint:errcheck

		mime, allowed, err := validation.SniffVideoType(file)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to inspect upload")
			return
		}
		if !allowed {
			logger.Warn.Printf("rejected upload %s: detected type %s", logger.SanitizeForLog(header.Filename), mime)
			writeError(w, http.StatusUnsupportedMediaType, "only video uploads are accepted")
			return
		}

		tmpFile, err := os.CreateTemp("", "upload-*.tmp")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to process upload")
			return
		}
		tmpPath := tmpFile.Name()

		if _, err := io.Copy(tmpFile, file); err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
			writeError(w, http.StatusInternalServerError, "failed to save file")
			return
		}
		if err := tmpFile.Close(); err != nil {
			_ = os.Remove(tmpPath)
			writeError(w, http.StatusInternalServerError, "failed to save file")
			return
		}

		video, err := h.videoSvc.Register(header.Filename, tmpPath)
		if err != nil {
			logger.Error.Printf("upload error for %s: %v", logger.SanitizeForLog(header.Filename), err)
			_ = os.Remove(tmpPath)
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		metrics.VideosUploadedTotal.Inc()
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Video uploaded successfully",
			"videoId": video.ID,
		})
	}
}

func (h *Handlers) Process() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		result, err := h.processSvc.Start(id)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusNotFound, "video not found")
			case errors.Is(err, domain.ErrAlreadyProcessing):
				writeError(w, http.StatusConflict, "video is already being processed")
			default:
				logger.Error.Printf("start processing %s: %v", id, err)
				writeError(w, http.StatusInternalServerError, "failed to start processing")
			}
			return
		}

		if result.AlreadyProcessed {
			writeJSON(w, http.StatusOK, map[string]any{
				"message":  "Video already processed",
				"videoId":  id,
				"segments": result.Segments,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Video processing started",
			"videoId": id,
		})
	}
}

func (h *Handlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := h.videoSvc.ListAll()
		if err != nil {
			logger.Error.Printf("list videos: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list videos")
			return
		}
		if videos == nil {
			videos = []*domain.Video{}
		}
		writeJSON(w, http.StatusOK, videos)
	}
}

func (h *Handlers) Metadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, err := h.videoSvc.Get(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "video not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load video")
			return
		}
		writeJSON(w, http.StatusOK, video)
	}
}

func (h *Handlers) Segments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		segments, err := h.videoSvc.Segments(id)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusNotFound, "video not found")
			case errors.Is(err, domain.ErrNotProcessed):
				writeError(w, http.StatusBadRequest, "video has not been processed yet")
			default:
				writeError(w, http.StatusInternalServerError, "failed to load segments")
			}
			return
		}
		if segments == nil {
			segments = []domain.Segment{}
		}
		writeJSON(w, http.StatusOK, segments)
	}
}

func (h *Handlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := h.videoSvc.Delete(id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "video not found")
				return
			}
			logger.Error.Printf("delete video %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "failed to delete video")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Video deleted"})
	}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
