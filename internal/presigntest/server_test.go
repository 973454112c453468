package presigntest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostones/csvupload/internal/types"
)

func getPresign(t *testing.T, s *Server, query string) (*http.Response, types.PresignResponse) {
	resp, err := http.Get(s.URL + "/presign?" + query)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body types.PresignResponse
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(b, &body))
	}
	return resp, body
}

func TestPresign(t *testing.T) {
	s := NewServer()
	defer s.Close()

	resp, body := getPresign(t, s, "filename=data.csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "uploads/data.csv", body.S3Key)

	u, err := url.Parse(body.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "/"+DefaultBucket+"/uploads/data.csv", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestPresignDefaultFilename(t *testing.T) {
	s := NewServer()
	defer s.Close()

	_, body := getPresign(t, s, "")
	assert.Equal(t, "uploads/users.csv", body.S3Key)

	_, body = getPresign(t, s, "file=legacy.csv")
	assert.Equal(t, "uploads/legacy.csv", body.S3Key)
}

func TestPutObjectRejectsOtherContentType(t *testing.T) {
	s := NewServer()
	defer s.Close()

	_, body := getPresign(t, s, "filename=data.csv")

	req, err := http.NewRequest(http.MethodPut, body.UploadURL, bytes.NewReader([]byte("a,b\n")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPut, body.UploadURL, bytes.NewReader([]byte("a,b\n")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// quoted hex digest
	assert.Len(t, resp.Header.Get("ETag"), 34)

	stored, ok := s.Object("uploads/data.csv")
	require.True(t, ok)
	assert.Equal(t, "a,b\n", string(stored))
	assert.Equal(t, 1, s.Count(http.MethodGet))
	assert.Equal(t, 2, s.Count(http.MethodPut))
}

func TestPresignStatus(t *testing.T) {
	s := NewServer(WithPresignStatus(http.StatusInternalServerError))
	defer s.Close()

	resp, _ := getPresign(t, s, "filename=data.csv")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "uploads/my+file.csv", Key("my file.csv"))
	assert.Equal(t, "uploads/users.csv", Key("users.csv"))
}
