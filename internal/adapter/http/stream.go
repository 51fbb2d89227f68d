package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/alveera224/ReelEdit/internal/adapter/http/validation"
	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/metrics"
)

// byteRange is one parsed "bytes=start-end" request range, already clamped
// to the file size.
type byteRange struct {
	start int64
	end   int64
}

func (br byteRange) length() int64 {
	return br.end - br.start + 1
}

var errUnsatisfiableRange = errors.New("requested range not satisfiable")

// parseRange handles the single-range form "bytes=start-end". An omitted end
// means through the last byte. Multipart ranges are not supported; players
// do not send them.
func parseRange(header string, size int64) (byteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, fmt.Errorf("unsupported range unit in %q", header)
	}
	if i := strings.IndexByte(spec, ','); i >= 0 {
		spec = spec[:i]
	}

	startStr, endStr, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return byteRange{}, fmt.Errorf("malformed range %q", header)
	}

	// Suffix form "bytes=-N": the final N bytes.
	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, fmt.Errorf("malformed range %q", header)
		}
		if n > size {
			n = size
		}
		return byteRange{start: size - n, end: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, fmt.Errorf("malformed range %q", header)
	}
	if start >= size {
		return byteRange{}, errUnsatisfiableRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return byteRange{}, fmt.Errorf("malformed range %q", header)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return byteRange{start: start, end: end}, nil
}

// serveFileRange streams a file honoring a single Range header: 206 with
// Content-Range for a partial request, 200 with the whole file otherwise.
func serveFileRange(w http.ResponseWriter, r *http.Request, path, kind string) {
	file, err := os.Open(path)
	if err != nil {
		logger.Error.Printf("open %s for streaming: %v", path, err)
		writeError(w, http.StatusNotFound, "file not found on disk")
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stat file")
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		n, _ := io.Copy(w, file)
		metrics.BytesStreamedTotal.WithLabelValues(kind).Add(float64(n))
		return
	}

	br, err := parseRange(rangeHeader, size)
	if err != nil {
		if errors.Is(err, errUnsatisfiableRange) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			writeError(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
			return
		}
		writeError(w, http.StatusBadRequest, "malformed range header")
		return
	}

	if _, err := file.Seek(br.start, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to seek file")
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(br.length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	n, _ := io.CopyN(w, file, br.length())
	metrics.BytesStreamedTotal.WithLabelValues(kind).Add(float64(n))
}

func (h *Handlers) StreamVideo() http.HandlerFunc {
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
		serveFileRange(w, r, video.StoredPath, "video")
	}
}

func (h *Handlers) StreamSegment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment, err := h.videoSvc.GetSegment(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "segment not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load segment")
			return
		}
		serveFileRange(w, r, segment.StoredPath, "segment")
	}
}

func (h *Handlers) DownloadSegment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segment, err := h.videoSvc.GetSegment(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "segment not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load segment")
			return
		}

		name := fmt.Sprintf("segment_%d.mp4", segment.Index)
		w.Header().Set("Content-Disposition", validation.ContentDisposition(name, false))
		serveFileRange(w, r, segment.StoredPath, "segment")
	}
}
