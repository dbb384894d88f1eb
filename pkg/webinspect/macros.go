package webinspect

import (
	"context"
	"net/http"
)

const macroPath = "/webinspect/scanner/macro"

// ListWebmacros lists the webmacros on the server
func (c *Client) ListWebmacros(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, macroPath, request{})
}

// UploadWebmacro uploads a webmacro file
func (c *Client) UploadWebmacro(ctx context.Context, macroFilePath string) *Response {
	return c.upload(ctx, http.MethodPut, macroPath, upload{
		fileField:     "macro",
		filePath:      macroFilePath,
		openErrFormat: "Could not read file to upload %v.",
	})
}
