package domain

import (
	"fmt"
	"strconv"
)

// ProbeFormat mirrors the "format" object of ffprobe's JSON output. Only the
// container-level fields the pipeline cares about are mapped.
type ProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	NbStreams  int    `json:"nb_streams"`
}

type ProbeResult struct {
	Format ProbeFormat `json:"format"`
}

// DurationSeconds parses the container duration. ffprobe reports it as a
// decimal string, or "N/A" for streams it cannot measure.
func (p *ProbeResult) DurationSeconds() (float64, error) {
	raw := p.Format.Duration
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("no duration in probe output")
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", d)
	}
	return d, nil
}

// FormatDuration renders seconds as m:ss or h:mm:ss for logs and metadata.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
