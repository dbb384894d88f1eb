package webinspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	settingsPath = "/webinspect/scanner/settings"
	wiswagPath   = "/webinspect/scanner/wiswag/"
)

// ListSettings lists the settings files on the server
func (c *Client) ListSettings(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, settingsPath, request{})
}

// DownloadSettings returns the XML of a settings file
func (c *Client) DownloadSettings(ctx context.Context, settingsName string) *Response {
	return c.do(ctx, http.MethodGet, settingsPath+"/"+url.PathEscape(settingsName), request{})
}

// UploadSettings uploads a settings file
func (c *Client) UploadSettings(ctx context.Context, settingsFilePath string) *Response {
	return c.upload(ctx, http.MethodPut, settingsPath, upload{
		fields:        map[string]string{"scanSettings": ""},
		fileField:     "file",
		filePath:      settingsFilePath,
		openErrFormat: "There was an error while handling the request %v.",
	})
}

type wiswagConfig struct {
	APIDefinition string `json:"apiDefinition"`
}

type wiswagRequest struct {
	Config     wiswagConfig `json:"config"`
	OutputType string       `json:"outputType"`
	OutputName string       `json:"outputName"`
}

// CreateWiswag has the server build a settings file named wiswagName from a
// swagger definition URL (e.g. http://petstore.swagger.io/v2/swagger.json)
func (c *Client) CreateWiswag(ctx context.Context, swaggerURL, wiswagName string) *Response {
	body, err := json.Marshal(wiswagRequest{
		Config:     wiswagConfig{APIDefinition: swaggerURL},
		OutputType: "settings",
		OutputName: wiswagName,
	})
	if err != nil {
		return newFailure(RequestError, NoResponseCode, fmt.Sprintf("could not encode wiswag request: %v", err), err)
	}

	return c.do(ctx, http.MethodPut, wiswagPath, request{
		body: body,
		headers: http.Header{
			"Accept":       {MIMEJSON},
			"Content-Type": {MIMEJSON},
		},
	})
}
