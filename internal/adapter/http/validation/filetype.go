// Package validation checks uploads before any record is created and keeps
// filenames safe for response headers.
package validation

import (
	"errors"
	"io"
	"net/http"
)

// ErrDisallowedFileType is returned when an upload is not a playable video.
var ErrDisallowedFileType = errors.New("file type not allowed")

// allowedMIMETypes is the allowlist of video container types accepted for
// upload. Everything the engine cannot segment is rejected up front.
var allowedMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/webm":       true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/x-matroska": true,
}

const sniffLen = 512

// SniffVideoType detects the content type of an upload from its leading
// bytes and reports whether it is an accepted video container. The reader is
// rewound to the start afterwards so the caller can store the full file.
func SniffVideoType(reader io.ReadSeeker) (mime string, allowed bool, err error) {
	buf := make([]byte, sniffLen)
	n, err := reader.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}
	if n == 0 {
		return "application/octet-stream", false, nil
	}
	buf = buf[:n]

	mime = detectVideoMagicBytes(buf)
	if mime == "" {
		mime = http.DetectContentType(buf)
	}
	return mime, allowedMIMETypes[mime], nil
}

// detectVideoMagicBytes covers the containers http.DetectContentType misses
// or misreports.
func detectVideoMagicBytes(buf []byte) string {
	if len(buf) < 4 {
		return ""
	}

	// EBML header, shared by WebM and Matroska. Telling them apart needs
	// the DocType element further into the stream; the engine handles both.
	if buf[0] == 0x1A && buf[1] == 0x45 && buf[2] == 0xDF && buf[3] == 0xA3 {
		return "video/webm"
	}

	// AVI: RIFF....AVI(space)
	if len(buf) >= 12 &&
		buf[0] == 'R' && buf[1] == 'I' && buf[2] == 'F' && buf[3] == 'F' &&
		buf[8] == 'A' && buf[9] == 'V' && buf[10] == 'I' && buf[11] == ' ' {
		return "video/x-msvideo"
	}

	// ISO base media: [size]["ftyp"][brand]. The brand separates QuickTime
	// from the MP4 family.
	if len(buf) >= 12 && buf[4] == 'f' && buf[5] == 't' && buf[6] == 'y' && buf[7] == 'p' {
		if string(buf[8:12]) == "qt  " {
			return "video/quicktime"
		}
		return "video/mp4"
	}

	return ""
}
