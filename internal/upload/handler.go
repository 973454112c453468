package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gostones/csvupload/internal"
	"github.com/gostones/csvupload/internal/types"
)

// Lines appended to the Log.
const (
	MsgChooseFile = "Choose a CSV file first."
	MsgRequesting = "Requesting presigned URL..."
	MsgUploading  = "Uploading file to S3..."
	MsgComplete   = "Upload complete. Waiting for pipeline..."
	MsgInProgress = "Upload already in progress."
	ErrorPrefix   = "Error: "
)

const (
	DefaultPresignPath = "/presign"

	// UploadContentType is sent with every PUT, whatever the file holds.
	UploadContentType = "text/csv"
)

// FileProvider yields the currently selected file, or nil when nothing is selected.
type FileProvider interface {
	Selected() (*internal.SelectedFile, error)
}

// FileProviderFunc adapts a func to FileProvider.
type FileProviderFunc func() (*internal.SelectedFile, error)

func (f FileProviderFunc) Selected() (*internal.SelectedFile, error) {
	return f()
}

// Handler requests a presigned URL for the selected file and PUTs the file to it.
// Every call to Run is one independent activation.
type Handler struct {
	files  FileProvider
	log    Log
	client *resty.Client
	logger *slog.Logger

	presignPath string
	exclusive   bool
	inflight    atomic.Bool
}

type Option func(*Handler)

// WithLogger sets the diagnostics logger. Diagnostics are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithPresignPath overrides the presign endpoint path, resolved against the client host URL.
func WithPresignPath(path string) Option {
	return func(h *Handler) {
		h.presignPath = path
	}
}

// WithExclusive rejects an activation while another one is in flight.
func WithExclusive() Option {
	return func(h *Handler) {
		h.exclusive = true
	}
}

func New(files FileProvider, log Log, client *resty.Client, opts ...Option) *Handler {
	h := &Handler{
		files:       files,
		log:         log,
		client:      client,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		presignPath: DefaultPresignPath,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes one activation and returns its final state: StateIdle when it
// stopped before any network call, otherwise StateDone or StateError.
func (h *Handler) Run(ctx context.Context) State {
	file, err := h.files.Selected()
	if err != nil {
		return h.fail(StateIdle, err)
	}
	if file == nil {
		h.log.Append(MsgChooseFile)
		return StateIdle
	}

	if h.exclusive {
		if !h.inflight.CompareAndSwap(false, true) {
			h.logger.Warn("activation rejected", "filename", file.Name())
			h.log.Append(MsgInProgress)
			return StateIdle
		}
		defer h.inflight.Store(false)
	}

	elapsed := internal.TimeTrack(time.Now())
	logger := h.logger.With("filename", file.Name())

	h.log.Append(MsgRequesting)
	presigned, err := h.presign(ctx, logger, file)
	if err != nil {
		return h.fail(StateAwaitingPresign, err)
	}
	logger.Debug("presigned", "s3_key", presigned.S3Key)

	h.log.Append(MsgUploading)
	etag, err := h.put(ctx, presigned.UploadURL, file)
	if err != nil {
		return h.fail(StateUploading, err)
	}

	_, sum, _ := file.MD5()
	logger.Info("uploaded", "size", file.Size(), "md5", sum, "etag", etag, "elapsed", elapsed())
	h.log.Append(MsgComplete)
	return StateDone
}

func (h *Handler) presign(ctx context.Context, logger *slog.Logger, file *internal.SelectedFile) (*types.PresignResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("filename", file.Name()).
		SetHeader("Accept", "application/json").
		Get(h.presignPath)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		logger.Error("presign rejected", "status", resp.StatusCode())
		return nil, ErrPresignFailed
	}

	var result types.PresignResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPresign, err)
	}
	if result.UploadURL == "" {
		return nil, ErrMalformedPresign
	}
	return &result, nil
}

func (h *Handler) put(ctx context.Context, uploadURL string, file *internal.SelectedFile) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", UploadContentType).
		SetBody(file.Bytes()).
		Put(uploadURL)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", &UploadError{Status: resp.StatusCode()}
	}
	return resp.Header().Get("ETag"), nil
}

// fail reports err on the shared error path.
func (h *Handler) fail(from State, err error) State {
	h.logger.Error("upload failed", "state", from.String(), "error", err)
	h.log.Append(ErrorPrefix + err.Error())
	return StateError
}

// NewClient returns a resty client rooted at baseURL. A zero timeout leaves the transport default.
func NewClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New().SetHostURL(baseURL)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	c.SetHeader("User-Agent", "csvupload")
	return c
}
