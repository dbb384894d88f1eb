package webinspect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
)

// upload describes a multipart file upload
type upload struct {
	// fields are sent as plain form values before the file
	fields map[string]string
	// fileField is the form field holding the file
	fileField string
	filePath  string
	headers   http.Header
	// openErrFormat renders the failure when the file can't be read
	openErrFormat string
}

// upload opens the file for the length of the call only. If it can't be
// opened nothing is sent.
func (c *Client) upload(ctx context.Context, method, path string, u upload) *Response {
	file, err := os.Open(filepath.Clean(u.filePath))
	if err != nil {
		return newFailure(FileError, NoResponseCode, fmt.Sprintf(u.openErrFormat, err), err)
	}
	defer file.Close()

	body, contentType, err := multipartBody(u.fields, u.fileField, filepath.Base(u.filePath), file)
	if err != nil {
		return newFailure(FileError, NoResponseCode, fmt.Sprintf(u.openErrFormat, err), err)
	}

	return c.do(ctx, method, path, request{
		body:        body,
		contentType: contentType,
		headers:     u.headers,
	})
}

func multipartBody(fields map[string]string, fileField, fileName string, content io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writer.WriteField(name, fields[name]); err != nil {
			return nil, "", err
		}
	}

	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, "", err
	}

	if _, err := io.Copy(part, content); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
