package webinspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webbreaker/webinspect/pkg/kind"
)

const scansPath = "/webinspect/scanner/scans"

// ExportFormat is the extension asked for when exporting a scan
type ExportFormat string

const (
	ExportXML      ExportFormat = "xml"
	ExportScan     ExportFormat = "scan"
	ExportSettings ExportFormat = "settings"
	ExportFPR      ExportFormat = "fpr"
	ExportCrawl    ExportFormat = "crawl"
	ExportIssue    ExportFormat = "issue"
	ExportAll      ExportFormat = "all"
)

var exportFormats = []ExportFormat{
	ExportXML,
	ExportScan,
	ExportSettings,
	ExportFPR,
	ExportCrawl,
	ExportIssue,
	ExportAll,
}

// ParseExportFormat accepts the format names regardless of case or a leading
// dot (e.g. "FPR", ".xml")
func ParseExportFormat(name string) (ExportFormat, error) {
	if format, ok := kind.Find(name, exportFormats); ok {
		return format, nil
	}

	return "", fmt.Errorf("unsupported export format: format=%q", name)
}

func scanPath(scanID string) string {
	return scansPath + "/" + url.PathEscape(scanID)
}

// CreateScan starts a scan. A string or []byte body is sent untouched, any
// other value is encoded as JSON.
func (c *Client) CreateScan(ctx context.Context, overrides any) *Response {
	var body []byte

	switch v := overrides.(type) {
	case nil:
	case string:
		body = []byte(v)
	case []byte:
		body = v
	case json.RawMessage:
		body = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return newFailure(RequestError, NoResponseCode, fmt.Sprintf("could not encode scan overrides: %v", err), err)
		}
		body = encoded
	}

	return c.do(ctx, http.MethodPost, scansPath+"/", request{body: body})
}

// ListScans lists current and past scans
func (c *Client) ListScans(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, scansPath, request{})
}

// ListRunningScans lists scans that are still running
func (c *Client) ListRunningScans(ctx context.Context) *Response {
	return c.do(ctx, http.MethodGet, scansPath, request{
		params: url.Values{"Status": {"running"}},
	})
}

// GetScanByName lists the scans with the given name. Names come from the
// settings file so they aren't necessarily unique.
func (c *Client) GetScanByName(ctx context.Context, scanName string) *Response {
	return c.do(ctx, http.MethodGet, scansPath, request{
		params: url.Values{"Name": {scanName}},
	})
}

// GetCurrentStatus returns the status of a scan (Running, Complete, Incomplete...)
func (c *Client) GetCurrentStatus(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodGet, scanPath(scanID)+"?action=getcurrentstatus", request{})
}

// WaitForStatusChange blocks server side until the scan status changes
func (c *Client) WaitForStatusChange(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodGet, scanPath(scanID)+"?action=waitforstatuschange", request{})
}

// StopScan stops a running scan
func (c *Client) StopScan(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodPost, scanPath(scanID)+"?action=stop", request{})
}

// ContinueScan resumes a stopped scan
func (c *Client) ContinueScan(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodPost, scanPath(scanID)+"?action=continue", request{})
}

// DeleteScan deletes a scan
func (c *Client) DeleteScan(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodDelete, scanPath(scanID), request{})
}

// ExportScanFormat downloads a scan in the given format. detailType is only
// sent for XML exports.
func (c *Client) ExportScanFormat(ctx context.Context, scanID string, format ExportFormat, detailType string) *Response {
	path := scanPath(scanID) + "." + string(format)

	if format == ExportXML && len(detailType) > 0 {
		path += "?detailType=" + url.QueryEscape(detailType)
	}

	return c.do(ctx, http.MethodGet, path, request{})
}

// GetScanIssuesDetail returns the full details of the issues found by a scan
func (c *Client) GetScanIssuesDetail(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodGet, scanPath(scanID)+".issue?detailType=full", request{})
}

// GetScanLog returns the log of a scan
func (c *Client) GetScanLog(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodGet, scanPath(scanID)+"/log", request{})
}

// GetScanCrawlJSON returns the site tree of a scan as JSON
func (c *Client) GetScanCrawlJSON(ctx context.Context, scanID string) *Response {
	return c.do(ctx, http.MethodPost, scanPath(scanID)+"/data/sitetree/json", request{})
}
