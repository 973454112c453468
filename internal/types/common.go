package types

// PresignResponse is the body returned by the presign endpoint.
type PresignResponse struct {
	UploadURL string `json:"upload_url"`
	S3Key     string `json:"s3_key,omitempty"`
}

// ErrorResponse is the body returned by the presign endpoint on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
