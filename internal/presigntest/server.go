// Package presigntest runs an in-process presign endpoint and object store.
// Presigned URLs are produced by the S3 SDK against the server's own address,
// so clients follow the same GET-then-PUT sequence they would against S3.
package presigntest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gorilla/mux"
	"github.com/gostones/csvupload/internal"
	"github.com/gostones/csvupload/internal/types"
)

const (
	DefaultBucket   = "csv-uploads"
	DefaultFilename = "users.csv"
	KeyPrefix       = "uploads/"
	Expiry          = 900 * time.Second

	region      = "us-east-1"
	contentType = "text/csv"
)

// Request is a request as received by the server.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Query parses RawQuery.
func (r Request) Query() url.Values {
	q, _ := url.ParseQuery(r.RawQuery)
	return q
}

type Option func(*Server)

// WithPresignStatus makes /presign answer with status and an error body.
func WithPresignStatus(status int) Option {
	return func(s *Server) {
		s.presignStatus = status
	}
}

// WithUploadStatus makes every object PUT answer with status.
func WithUploadStatus(status int) Option {
	return func(s *Server) {
		s.uploadStatus = status
	}
}

// WithoutUploadURL drops upload_url from the presign body.
func WithoutUploadURL() Option {
	return func(s *Server) {
		s.omitUploadURL = true
	}
}

// WithRawPresignBody makes /presign answer 200 with body as is.
func WithRawPresignBody(body string) Option {
	return func(s *Server) {
		s.rawPresignBody = &body
	}
}

// WithBeforePresign runs fn at the start of every /presign request.
func WithBeforePresign(fn func(*http.Request)) Option {
	return func(s *Server) {
		s.beforePresign = fn
	}
}

// Server is a presign endpoint at GET /presign and a path-style bucket at PUT /{bucket}/{key}.
type Server struct {
	*httptest.Server
	Bucket string

	svc *s3.S3

	presignStatus  int
	uploadStatus   int
	omitUploadURL  bool
	rawPresignBody *string
	beforePresign  func(*http.Request)

	mu       sync.Mutex
	requests []Request
	objects  map[string][]byte
}

// NewServer starts a server. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		Bucket:  DefaultBucket,
		objects: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.HandleFunc("/presign", s.presign).Methods(http.MethodGet)
	r.HandleFunc("/{bucket}/{key:.+}", s.putObject).Methods(http.MethodPut)

	s.Server = httptest.NewServer(s.record(r))

	cfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials("AKIDPRESIGNTEST", "presigntest-secret", ""),
		Endpoint:         aws.String(s.URL),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
	}
	s.svc = s3.New(session.New(), cfg)
	return s
}

// Key returns the object key the presign endpoint assigns to filename.
func Key(filename string) string {
	return KeyPrefix + url.QueryEscape(filename)
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many received requests used method.
func (s *Server) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Object returns the stored content for key.
func (s *Server) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) presign(w http.ResponseWriter, r *http.Request) {
	if s.beforePresign != nil {
		s.beforePresign(r)
	}
	if s.presignStatus != 0 {
		writeJSON(w, s.presignStatus, &types.ErrorResponse{Error: http.StatusText(s.presignStatus)})
		return
	}
	if s.rawPresignBody != nil {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, *s.rawPresignBody)
		return
	}

	q := r.URL.Query()
	filename := q.Get("filename")
	if filename == "" {
		filename = q.Get("file")
	}
	if filename == "" {
		filename = DefaultFilename
	}
	key := Key(filename)

	req, _ := s.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	u, err := req.Presign(Expiry)
	if err != nil {
		log.Printf("presign %s: %v", key, err)
		writeJSON(w, http.StatusInternalServerError, &types.ErrorResponse{Error: err.Error()})
		return
	}

	resp := &types.PresignResponse{UploadURL: u, S3Key: key}
	if s.omitUploadURL {
		resp.UploadURL = ""
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) putObject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if vars["bucket"] != s.Bucket {
		http.Error(w, "NoSuchBucket", http.StatusNotFound)
		return
	}
	if s.uploadStatus != 0 {
		http.Error(w, http.StatusText(s.uploadStatus), s.uploadStatus)
		return
	}

	// The signature covers Content-Type when it was part of the presigned input.
	signed := strings.Split(r.URL.Query().Get("X-Amz-SignedHeaders"), ";")
	for _, h := range signed {
		if h == "content-type" && r.Header.Get("Content-Type") != contentType {
			http.Error(w, "SignatureDoesNotMatch", http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, hex, _ := internal.MD5Sum(bytes.NewReader(body))

	s.mu.Lock()
	s.objects[vars["key"]] = body
	s.mu.Unlock()

	w.Header().Set("ETag", `"`+hex+`"`)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
