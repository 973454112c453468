package internal

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType(t *testing.T) {
	file, err := os.Open("./testdata/users.csv")
	require.NoError(t, err)
	defer file.Close()

	contentType, err := ContentType(file)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
}

func TestContentTypeShortAndEmpty(t *testing.T) {
	ct, err := ContentType(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", ct)

	ct, err = ContentType(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", ct)

	ct, err = ContentType(bytes.NewReader([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
}

func TestTimeTrack(t *testing.T) {
	elapsed := TimeTrack(time.Now().Add(-2 * time.Second))
	assert.GreaterOrEqual(t, elapsed(), 2*time.Second)
}
