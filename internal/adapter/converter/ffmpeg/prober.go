package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/alveera224/ReelEdit/internal/domain"
	"github.com/alveera224/ReelEdit/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

// validatePath rejects paths that cannot name a real file before they reach
// the engine command line.
func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	for i := 0; i < len(path); i++ {
		if path[i] == 0 {
			return ErrInvalidPath
		}
	}
	return nil
}

// Prober wraps ffprobe to report the total duration of a media file.
type Prober struct{}

func NewProber() port.Prober {
	return &Prober{}
}

func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if err := validatePath(path); err != nil {
		return 0, err
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("source file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result domain.ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	return result.DurationSeconds()
}

var _ port.Prober = (*Prober)(nil)
