package model

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ImageFile is a cover image chosen locally and held in memory until the
// book is submitted.
type ImageFile struct {
	Name string
	Data []byte
}

func NewImageFile(name string, r io.Reader) (*ImageFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", name, err)
	}
	return &ImageFile{Name: name, Data: data}, nil
}

func (f *ImageFile) ContentType() string {
	return http.DetectContentType(f.Data)
}

// PreviewURL is a data: URI so the image can be previewed before upload.
func (f *ImageFile) PreviewURL() string {
	return "data:" + f.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// ImageURL resolves a server-relative image path against the API base URL.
func ImageURL(base, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
