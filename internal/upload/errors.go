package upload

import (
	"errors"
	"strconv"
)

var (
	// ErrPresignFailed is returned when the presign endpoint answers with a non-2xx status.
	ErrPresignFailed = errors.New("Presign failed")

	// ErrMalformedPresign is returned when the presign body has no usable upload_url.
	// A body that does not decode wraps it with the decoder's message.
	ErrMalformedPresign = errors.New("Presign response missing upload_url")
)

// UploadError reports a non-2xx answer to the object PUT.
type UploadError struct {
	Status int
}

func (e *UploadError) Error() string {
	return "Upload failed: " + strconv.Itoa(e.Status)
}
