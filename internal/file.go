package internal

import (
	"bytes"
	"io"
	"os"
)

// SelectedFile is a file chosen for upload: its base name, its content and the
// media type sniffed from its first bytes.
type SelectedFile struct {
	name        string
	contentType string
	data        []byte
}

// NewSelectedFile wraps content already held in memory.
func NewSelectedFile(name string, data []byte) *SelectedFile {
	if data == nil {
		data = []byte{}
	}
	ct, _ := ContentType(bytes.NewReader(data))
	return &SelectedFile{
		name:        name,
		contentType: ct,
		data:        data,
	}
}

// OpenSelectedFile reads the whole file at path.
func OpenSelectedFile(path string) (*SelectedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}

	data := make([]byte, 0, fi.Size())
	buf := bytes.NewBuffer(data)
	if _, err := io.Copy(buf, file); err != nil {
		return nil, err
	}
	return NewSelectedFile(fi.Name(), buf.Bytes()), nil
}

func (r *SelectedFile) Name() string {
	return r.name
}

// ContentType is the declared media type. Uploads do not use it.
func (r *SelectedFile) ContentType() string {
	return r.contentType
}

func (r *SelectedFile) Bytes() []byte {
	return r.data
}

func (r *SelectedFile) Size() int64 {
	return int64(len(r.data))
}

func (r *SelectedFile) MD5() (string, string, error) {
	return MD5Sum(bytes.NewReader(r.data))
}
