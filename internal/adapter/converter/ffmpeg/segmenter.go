package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/alveera224/ReelEdit/internal/infrastructure/logger"
	"github.com/alveera224/ReelEdit/internal/port"
)

// Segmenter cuts fixed windows out of a source file with ffmpeg, re-encoding
// to H.264/AAC so every output plays without the source's codec installed.
type Segmenter struct{}

func NewSegmenter() port.Segmenter {
	return &Segmenter{}
}

// buildArgs assembles the ffmpeg command line for a single cut. The seek is
// placed before -i so ffmpeg jumps on the input side instead of decoding the
// whole lead-in; for the first window no seek is emitted at all.
func buildArgs(req port.CutRequest) []string {
	args := make([]string, 0, 24)
	if req.SeekSeconds > 0 {
		args = append(args, "-ss", formatSeconds(req.SeekSeconds))
	}
	args = append(args,
		"-i", req.InputPath,
		"-t", formatSeconds(req.Duration),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "128k",
		"-preset", "ultrafast",
		"-tune", "fastdecode",
		"-movflags", "+faststart",
		"-threads", "0",
		"-progress", "pipe:1",
		"-nostats",
		"-y",
		req.OutputPath,
	)
	return args
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

func (s *Segmenter) Cut(ctx context.Context, req port.CutRequest, onProgress port.ProgressFunc) error {
	if err := validatePath(req.InputPath); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := validatePath(req.OutputPath); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if req.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", req.Duration)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", buildArgs(req)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumeProgress(stdout, req.Duration, onProgress)
	}()

	// Drain stdout before Wait: Wait closes the pipe, and the caller must
	// not observe progress callbacks after Cut returns.
	<-done

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// consumeProgress reads the key=value stream emitted by -progress pipe:1 and
// converts out_time_us samples into a percentage of the requested duration.
func consumeProgress(r io.Reader, duration float64, onProgress port.ProgressFunc) {
	if onProgress == nil {
		onProgress = func(float64) {}
	}
	totalUs := duration * 1e6
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "out_time_us":
			us, err := strconv.ParseFloat(value, 64)
			if err != nil || us < 0 {
				continue
			}
			percent := us / totalUs * 100
			if percent > 100 {
				percent = 100
			}
			onProgress(percent)
		case "progress":
			if value == "end" {
				onProgress(100)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug.Printf("progress stream closed: %v", err)
	}
}

// lastLine trims ffmpeg's stderr down to its final line, which carries the
// actual failure reason.
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

var _ port.Segmenter = (*Segmenter)(nil)
