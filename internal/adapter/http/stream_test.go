package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alveera224/ReelEdit/internal/domain"
)

func TestParseRange(t *testing.T) {
	const size = 1000
	tests := []struct {
		name    string
		header  string
		start   int64
		end     int64
		wantErr bool
	}{
		{"open ended", "bytes=0-", 0, 999, false},
		{"explicit", "bytes=100-199", 100, 199, false},
		{"end clamped", "bytes=900-2000", 900, 999, false},
		{"suffix", "bytes=-100", 900, 999, false},
		{"suffix larger than file", "bytes=-5000", 0, 999, false},
		{"multi range uses first", "bytes=0-99,200-299", 0, 99, false},
		{"start past eof", "bytes=1000-", 0, 0, true},
		{"inverted", "bytes=200-100", 0, 0, true},
		{"not bytes", "items=0-10", 0, 0, true},
		{"garbage", "bytes=abc-def", 0, 0, true},
		{"empty suffix", "bytes=-", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br, err := parseRange(tt.header, size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, br.start)
			assert.Equal(t, tt.end, br.end)
		})
	}
}

func streamFixture(t *testing.T) (*Server, *domain.Video, string) {
	t.Helper()
	dir := t.TempDir()
	content := strings.Repeat("0123456789", 100)
	path := filepath.Join(dir, "stored.mp4")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	videoSvc := newFakeVideoService()
	video := domain.NewVideo("clip.mp4", path, int64(len(content)))
	segments := domain.PlanSegments(video.ID, 20)
	for i := range segments {
		segments[i].StoredPath = path
	}
	video.MarkCompleted(segments)
	videoSvc.videos[video.ID] = video

	return newTestServer(videoSvc, &fakeProcessService{}), video, content
}

func TestStreamVideo_FullFile(t *testing.T) {
	server, video, content := streamFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/video/"+video.ID, nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
	assert.Equal(t, content, rec.Body.String())
}

func TestStreamVideo_PartialRange(t *testing.T) {
	server, video, content := streamFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/video/"+video.ID, nil)
	req.Header.Set("Range", "bytes=10-19")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 10-19/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Equal(t, content[10:20], rec.Body.String())
}

func TestStreamVideo_OpenEndedRange(t *testing.T) {
	server, video, content := streamFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/video/"+video.ID, nil)
	req.Header.Set("Range", "bytes=990-")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 990-999/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, content[990:], rec.Body.String())
}

func TestStreamVideo_UnsatisfiableRange(t *testing.T) {
	server, video, _ := streamFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/video/"+video.ID, nil)
	req.Header.Set("Range", "bytes=5000-")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))
}

func TestStreamVideo_NotFound(t *testing.T) {
	server, _, _ := streamFixture(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream/video/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamSegment_ByID(t *testing.T) {
	server, video, content := streamFixture(t)

	segID := domain.SegmentID(video.ID, 2)
	req := httptest.NewRequest(http.MethodGet, "/stream/segment/"+segID, nil)
	req.Header.Set("Range", "bytes=0-9")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, content[:10], rec.Body.String())
}

func TestDownloadSegment_SetsDisposition(t *testing.T) {
	server, video, content := streamFixture(t)

	segID := domain.SegmentID(video.ID, 2)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/segment/"+segID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="segment_2.mp4"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, content, rec.Body.String())
}

func TestDownloadSegment_NotFound(t *testing.T) {
	server, _, _ := streamFixture(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/segment/ghost_segment_1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamVideo_FileMissingOnDisk(t *testing.T) {
	videoSvc := newFakeVideoService()
	video := domain.NewVideo("clip.mp4", "/nonexistent/path.mp4", 0)
	videoSvc.videos[video.ID] = video
	server := newTestServer(videoSvc, &fakeProcessService{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream/video/"+video.ID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
