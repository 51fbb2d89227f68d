package ffmpeg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProber_RejectsEmptyPath(t *testing.T) {
	p := &Prober{}

	_, err := p.Duration(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestProber_MissingFile(t *testing.T) {
	p := &Prober{}

	_, err := p.Duration(context.Background(), "/nonexistent/video.mp4")
	assert.ErrorContains(t, err, "source file")
}
