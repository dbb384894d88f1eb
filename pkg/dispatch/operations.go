package dispatch

import (
	"context"

	"github.com/webbreaker/webinspect/pkg/id"
	"github.com/webbreaker/webinspect/pkg/kind"
	"github.com/webbreaker/webinspect/pkg/proto"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

// runFunc pulls its arguments out of args and calls the client. An error
// means the arguments were bad and nothing was sent.
type runFunc func(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error)

type operation struct {
	name string
	run  runFunc
}

// noArgs adapts client methods that only take a context
func noArgs(fn func(*webinspect.Client, context.Context) *webinspect.Response) runFunc {
	return func(ctx context.Context, client *webinspect.Client, _ proto.Args) (*webinspect.Response, error) {
		return fn(client, ctx), nil
	}
}

// oneArg adapts client methods that take a single string
func oneArg(name string, fn func(*webinspect.Client, context.Context, string) *webinspect.Response) runFunc {
	return func(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error) {
		value, err := args.String(name)
		if err != nil {
			return nil, err
		}

		return fn(client, ctx, value), nil
	}
}

var operations = []operation{
	{"create-scan", func(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error) {
		return client.CreateScan(ctx, args.Value("overrides")), nil
	}},
	{"list-scans", noArgs((*webinspect.Client).ListScans)},
	{"list-running-scans", noArgs((*webinspect.Client).ListRunningScans)},
	{"get-scan-by-name", oneArg("scan_name", (*webinspect.Client).GetScanByName)},
	{"get-current-status", oneArg("scan_id", (*webinspect.Client).GetCurrentStatus)},
	{"wait-for-status-change", oneArg("scan_id", (*webinspect.Client).WaitForStatusChange)},
	{"stop-scan", oneArg("scan_id", (*webinspect.Client).StopScan)},
	{"continue-scan", oneArg("scan_id", (*webinspect.Client).ContinueScan)},
	{"delete-scan", oneArg("scan_id", (*webinspect.Client).DeleteScan)},
	{"export-scan-format", exportScanFormat},
	{"get-scan-issues-detail", oneArg("scan_id", (*webinspect.Client).GetScanIssuesDetail)},
	{"get-scan-log", oneArg("scan_id", (*webinspect.Client).GetScanLog)},
	{"get-scan-crawl-json", oneArg("scan_id", (*webinspect.Client).GetScanCrawlJSON)},
	{"list-policies", noArgs((*webinspect.Client).ListPolicies)},
	{"get-policy-by-guid", oneArg("policy_guid", (*webinspect.Client).GetPolicyByGUID)},
	{"get-policy-by-name", oneArg("policy_name", (*webinspect.Client).GetPolicyByName)},
	{"delete-policy", oneArg("policy_guid", (*webinspect.Client).DeletePolicy)},
	{"upload-policy", oneArg("file_path", (*webinspect.Client).UploadPolicy)},
	{"list-settings", noArgs((*webinspect.Client).ListSettings)},
	{"download-settings", oneArg("settings_name", (*webinspect.Client).DownloadSettings)},
	{"upload-settings", oneArg("file_path", (*webinspect.Client).UploadSettings)},
	{"create-wiswag", createWiswag},
	{"list-webmacros", noArgs((*webinspect.Client).ListWebmacros)},
	{"upload-webmacro", oneArg("file_path", (*webinspect.Client).UploadWebmacro)},
	{"start-proxy", startProxy},
	{"delete-proxy", oneArg("instance_id", (*webinspect.Client).DeleteProxy)},
	{"list-proxies", noArgs((*webinspect.Client).ListProxies)},
	{"get-proxy-information", oneArg("instance_id", (*webinspect.Client).GetProxyInformation)},
	{"upload-webmacro-proxy", uploadWebmacroProxy},
	{"download-proxy-setting", oneArg("instance_id", (*webinspect.Client).DownloadProxySetting)},
	{"download-proxy-webmacro", oneArg("instance_id", (*webinspect.Client).DownloadProxyWebmacro)},
	{"cert-proxy", noArgs((*webinspect.Client).CertProxy)},
}

// lookup finds an operation by name, ignoring case, dashes and underscores
// (ListScans, list_scans and list-scans are the same operation)
func lookup(name string) (operation, bool) {
	for _, op := range operations {
		if kind.KindsMatch(op.name, name) {
			return op, true
		}
	}

	return operation{}, false
}

// OperationNames lists the supported operation names
func OperationNames() []string {
	names := make([]string, len(operations))
	for i, op := range operations {
		names[i] = op.name
	}

	return names
}

func exportScanFormat(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error) {
	scanID, err := args.String("scan_id")
	if err != nil {
		return nil, err
	}

	format, err := webinspect.ParseExportFormat(args.StringOr("format", string(webinspect.ExportFPR)))
	if err != nil {
		return nil, err
	}

	return client.ExportScanFormat(ctx, scanID, format, args.StringOr("detail_type", "Full")), nil
}

func createWiswag(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error) {
	swaggerURL, err := args.String("swagger_url")
	if err != nil {
		return nil, err
	}

	wiswagName, err := args.String("wiswag_name")
	if err != nil {
		return nil, err
	}

	return client.CreateWiswag(ctx, swaggerURL, wiswagName), nil
}

func startProxy(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error) {
	port, err := args.Int("port")
	if err != nil {
		return nil, err
	}

	instanceID := args.StringOr("instance_id", id.InstanceID())

	return client.StartProxy(ctx, instanceID, port, args.StringOr("address", "127.0.0.1")), nil
}

func uploadWebmacroProxy(ctx context.Context, client *webinspect.Client, args proto.Args) (*webinspect.Response, error) {
	instanceID, err := args.String("instance_id")
	if err != nil {
		return nil, err
	}

	filePath, err := args.String("file_path")
	if err != nil {
		return nil, err
	}

	return client.UploadWebmacroProxy(ctx, instanceID, filePath), nil
}
