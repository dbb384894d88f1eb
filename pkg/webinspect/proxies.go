package webinspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const proxyPath = "/webinspect/proxy"

func proxyInstancePath(instanceID string) string {
	return proxyPath + "/" + url.PathEscape(instanceID)
}

type startProxyRequest struct {
	InstanceID string `json:"instanceId"`
	Address    string `json:"address"`
	Port       string `json:"port"`
}

// StartProxy creates a proxy listener. instanceID is picked by the caller
// and used to address the proxy afterwards.
func (c *Client) StartProxy(ctx context.Context, instanceID string, port int, address string) *Response {
	body, err := json.Marshal(startProxyRequest{
		InstanceID: instanceID,
		Address:    address,
		Port:       fmt.Sprint(port),
	})
	if err != nil {
		return newFailure(RequestError, NoResponseCode, fmt.Sprintf("could not encode proxy request: %v", err), err)
	}

	return c.do(ctx, http.MethodPost, proxyPath+"/", request{body: body})
}

// DeleteProxy stops and deletes a proxy (WebInspect has no separate stop)
func (c *Client) DeleteProxy(ctx context.Context, instanceID string) *Response {
	return c.do(ctx, http.MethodDelete, proxyInstancePath(instanceID), request{})
}

// ListProxies lists the proxies on the server
func (c *Client) ListProxies(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, proxyPath, request{})
}

// GetProxyInformation returns details about a proxy
func (c *Client) GetProxyInformation(ctx context.Context, instanceID string) *Response {
	return c.do(ctx, http.MethodGet, proxyInstancePath(instanceID), request{})
}

// UploadWebmacroProxy saves a webmacro onto a proxy
func (c *Client) UploadWebmacroProxy(ctx context.Context, instanceID, macroFilePath string) *Response {
	return c.upload(ctx, http.MethodPut, proxyInstancePath(instanceID)+".webmacro?action=save", upload{
		fileField:     "macro",
		filePath:      macroFilePath,
		openErrFormat: "Could not read file to upload %v.",
	})
}

// DownloadProxySetting returns the settings XML recorded by a proxy
func (c *Client) DownloadProxySetting(ctx context.Context, instanceID string) *Response {
	return c.do(ctx, http.MethodGet, proxyInstancePath(instanceID)+".xml", request{})
}

// DownloadProxyWebmacro returns the webmacro recorded by a proxy
func (c *Client) DownloadProxyWebmacro(ctx context.Context, instanceID string) *Response {
	return c.do(ctx, http.MethodGet, proxyInstancePath(instanceID)+".webmacro", request{})
}

// CertProxy returns the WebInspect root certificate to import into a browser
func (c *Client) CertProxy(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, proxyPath+"/rootcert", request{})
}
