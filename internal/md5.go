package internal

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"io"
)

// MD5Sum computes the MD5 digest of r and returns it as base64 (of the raw
// digest, as used by Content-MD5) and as hex (as used by S3 ETags).
func MD5Sum(r io.Reader) (string, string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", "", err
	}
	sum := h.Sum(nil)
	return base64.StdEncoding.EncodeToString(sum), hex.EncodeToString(sum), nil
}
