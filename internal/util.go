package internal

import (
	"io"
	"net/http"
	"time"
)

// TimeTrack returns a func reporting the time elapsed since start.
func TimeTrack(start time.Time) func() time.Duration {
	return func() time.Duration {
		return time.Since(start).Round(time.Millisecond)
	}
}

// ContentType reads up to the first 512 bytes and sniffs the mime type.
// An empty reader is reported as application/octet-stream.
func ContentType(r io.Reader) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
