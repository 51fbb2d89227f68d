package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/port"
)

// VideoService owns the registry-facing operations around a video record:
// creating it from a finished upload, metadata and segment queries, and
// explicit deletion. Processing is the orchestrator's job.
type VideoService struct {
	registry    port.VideoRegistry
	uploadDir   string
	segmentsDir string
}

func NewVideoService(registry port.VideoRegistry, dataDir string) *VideoService {
	return &VideoService{
		registry:    registry,
		uploadDir:   filepath.Join(dataDir, "uploads"),
		segmentsDir: filepath.Join(dataDir, "segments"),
	}
}

func (s *VideoService) UploadDir() string   { return s.uploadDir }
func (s *VideoService) SegmentsDir() string { return s.segmentsDir }

// Register stores a fully received upload under the uploads directory and
// creates the registry entry in idle state. tmpPath must name an existing,
// fully written file; it is renamed into place, never copied.
func (s *VideoService) Register(originalName, tmpPath string) (*domain.Video, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("uploaded file is empty")
	}

	video := domain.NewVideo(originalName, "", info.Size())
	storedPath := filepath.Join(s.uploadDir, video.ID+filepath.Ext(originalName))
	if err := os.Rename(tmpPath, storedPath); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	video.StoredPath = storedPath

	if err := s.registry.Save(video); err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("save video record: %w", err)
	}

	logger.Info.Printf("video registered: id=%s name=%s size=%d", video.ID, logger.SanitizeForLog(originalName), video.SizeBytes)
	return video, nil
}

func (s *VideoService) Get(id string) (*domain.Video, error) {
	return s.registry.Get(id)
}

func (s *VideoService) ListAll() ([]*domain.Video, error) {
	return s.registry.ListAll()
}

// Segments returns the ordered segment list of a completed video, or
// ErrNotProcessed while the video has not reached the completed state.
func (s *VideoService) Segments(id string) ([]domain.Segment, error) {
	video, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if video.Status != domain.VideoStatusCompleted {
		return nil, domain.ErrNotProcessed
	}
	return video.Segments, nil
}

// GetSegment resolves a segment id through the registry.
func (s *VideoService) GetSegment(segmentID string) (*domain.Segment, error) {
	return s.registry.GetSegment(segmentID)
}

// Delete removes the record, the stored original, and the per-video segment
// directory. This is the only path that destroys a video; the pipeline never
// deletes records on its own.
func (s *VideoService) Delete(id string) error {
	video, err := s.registry.Get(id)
	if err != nil {
		return err
	}

	if err := s.registry.Delete(id); err != nil {
		return fmt.Errorf("delete video record: %w", err)
	}

	if err := os.Remove(video.StoredPath); err != nil && !os.IsNotExist(err) {
		logger.Warn.Printf("failed to remove original %s: %v", video.StoredPath, err)
	}
	segDir := filepath.Join(s.segmentsDir, video.ID)
	if err := os.RemoveAll(segDir); err != nil {
		logger.Warn.Printf("failed to remove segment directory %s: %v", segDir, err)
	}

	logger.Info.Printf("video deleted: id=%s", id)
	return nil
}
