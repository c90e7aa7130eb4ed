package provider

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
)

// MultipartBody describes a multipart/form-data request to a model sidecar.
type MultipartBody struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// Files are file upload fields, read from disk at encode time.
	Files []FileField
}

// FileField is a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "audio").
	FieldName string
	// FileName is the file name sent to the sidecar.
	FileName string
	// Path is the local file to upload.
	Path string
}

// Encode builds the multipart body and returns the reader and the
// Content-Type header value.
func (m *MultipartBody) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.FieldName, f.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", f.FieldName, err)
		}
		src, err := os.Open(f.Path)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", f.Path, err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.Path, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
