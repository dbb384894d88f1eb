package webinspect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const policyPath = "/webinspect/securebase/policy"

// ListPolicies lists the SecureBase policies
func (c *Client) ListPolicies(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, policyPath, request{})
}

// GetPolicyByGUID returns the policy with the given GUID
func (c *Client) GetPolicyByGUID(ctx context.Context, policyGUID string) *Response {
	return c.do(ctx, http.MethodGet, policyPath+"/"+url.PathEscape(policyGUID), request{})
}

// GetPolicyByName looks the policy up in the policy list. A match succeeds
// with the policy as data; no match succeeds with a 404 code and nil data. If
// the list call itself fails, that response is returned as is.
func (c *Client) GetPolicyByName(ctx context.Context, name string) *Response {
	resp := c.ListPolicies(ctx)
	if !resp.Success() {
		return resp
	}

	if policies, ok := resp.Data().([]any); ok {
		for _, entry := range policies {
			policy, ok := entry.(map[string]any)
			if !ok {
				continue
			}

			if policyName, ok := policy["name"].(string); ok && policyName == name {
				return NewResponse(true, http.StatusOK, DefaultMessage, policy)
			}
		}
	}

	return NewResponse(true, http.StatusNotFound, fmt.Sprintf("policy not found: name=%q", name), nil)
}

// DeletePolicy deletes the policy with the given GUID
func (c *Client) DeletePolicy(ctx context.Context, policyGUID string) *Response {
	return c.do(ctx, http.MethodDelete, policyPath+"/"+url.PathEscape(policyGUID), request{})
}

// UploadPolicy uploads a policy file
func (c *Client) UploadPolicy(ctx context.Context, policyFilePath string) *Response {
	return c.upload(ctx, http.MethodPost, policyPath, upload{
		fields:    map[string]string{"policy": ""},
		fileField: "file",
		filePath:  policyFilePath,
		// explicit headers keep the JSON content type off the multipart body
		headers:       http.Header{"Accept": {MIMEJSON}},
		openErrFormat: "There was an error while handling the request %v.",
	})
}
