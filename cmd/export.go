package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/semgroup"
	"github.com/mholt/archives"
	"github.com/spf13/cobra"

	"github.com/webbreaker/webinspect/pkg/fs"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

// exportOptions are the flags of scan export
type exportOptions struct {
	compress   string
	detailType string
	format     webinspect.ExportFormat
	outputDir  string
	scanIDs    []string
	workers    int
}

func scanExportCommand() *cobra.Command {
	exportCommand := &cobra.Command{
		Use:   "export",
		Short: "Export one or more scans",
		Long: `Export scans in one of the WebInspect export formats. With a single --id
and no --output-dir the export is printed like any other response. With an
--output-dir every scan is written to <id>.<format> in that directory,
several at a time.`,
		Example: `  webinspect scan export --id 3fa85f64 --format xml --detail-type Full
  webinspect scan export --id a --id b --format fpr --output-dir ./exports --compress gz`,
		Args: cobra.NoArgs,
		RunE: runScanExport,
	}

	flags := exportCommand.Flags()
	flags.StringArray("id", nil, "scan ID to export (repeatable)")
	flags.String("format", string(webinspect.ExportFPR), "export format [xml|scan|settings|fpr|crawl|issue|all]")
	flags.String("detail-type", "Full", "detail type for xml exports")
	flags.String("output-dir", "", "directory to write the exports to")
	flags.Int("workers", 4, "how many exports run at the same time")
	flags.String("compress", "", "compress the exports, e.g. gz, zst, xz, bz2")
	_ = exportCommand.MarkFlagRequired("id")

	return exportCommand
}

func exportCommandToOptions(cmd *cobra.Command) (*exportOptions, error) {
	flags := cmd.Flags()
	opts := &exportOptions{}

	var err error

	if opts.scanIDs, err = flags.GetStringArray("id"); err != nil {
		return nil, err
	}

	if len(opts.scanIDs) == 0 {
		return nil, errors.New("missing required field: field=\"id\"")
	}

	formatName, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}

	if opts.format, err = webinspect.ParseExportFormat(formatName); err != nil {
		return nil, err
	}

	if opts.detailType, err = flags.GetString("detail-type"); err != nil {
		return nil, err
	}

	if opts.outputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}

	if opts.workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}

	if opts.workers < 1 {
		return nil, fmt.Errorf("invalid worker count: workers=%d", opts.workers)
	}

	if opts.compress, err = flags.GetString("compress"); err != nil {
		return nil, err
	}

	if len(opts.outputDir) == 0 && (len(opts.scanIDs) > 1 || len(opts.compress) > 0) {
		return nil, errors.New("missing required field: field=\"output-dir\"")
	}

	return opts, nil
}

func runScanExport(cmd *cobra.Command, args []string) error {
	opts, err := exportCommandToOptions(cmd)
	if err != nil {
		return err
	}

	if len(opts.outputDir) == 0 {
		client, err := newClient()
		if err != nil {
			return err
		}

		return writeResponse(cmd, client.ExportScanFormat(cmd.Context(), opts.scanIDs[0], opts.format, opts.detailType))
	}

	var compressor archives.Compressor
	if len(opts.compress) > 0 {
		if compressor, err = lookupCompressor(cmd.Context(), opts.compress); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(opts.outputDir, 0700); err != nil {
		return fmt.Errorf("could not create output dir: path=%q: %w", opts.outputDir, err)
	}

	var (
		mutex  sync.Mutex
		failed *requestFailedError
	)

	sg := semgroup.NewGroup(cmd.Context(), int64(opts.workers))

	for _, scanID := range opts.scanIDs {
		sg.Go(func() error {
			path, err := exportScan(cmd.Context(), opts, compressor, scanID)

			mutex.Lock()
			defer mutex.Unlock()

			if err != nil {
				var requestFailed *requestFailedError
				if errors.As(err, &requestFailed) && failed == nil {
					failed = requestFailed
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	}

	if err := sg.Wait(); err != nil {
		// A failed request keeps its own exit code
		if failed != nil {
			return failed
		}
		return err
	}

	return nil
}

// lookupCompressor finds the compression format for an extension such as gz
func lookupCompressor(ctx context.Context, extension string) (archives.Compressor, error) {
	format, _, err := archives.Identify(ctx, "export."+extension, nil)
	if err != nil {
		return nil, fmt.Errorf("unsupported compression: compress=%q: %w", extension, err)
	}

	compressor, ok := format.(archives.Compressor)
	if !ok {
		return nil, fmt.Errorf("unsupported compression: compress=%q", extension)
	}

	return compressor, nil
}

// exportScan downloads one export with its own client and writes it under
// the output dir
func exportScan(ctx context.Context, opts *exportOptions, compressor archives.Compressor, scanID string) (string, error) {
	client, err := newClient()
	if err != nil {
		return "", err
	}

	resp := client.ExportScanFormat(ctx, scanID, opts.format, opts.detailType)
	if !resp.Success() {
		logger.Error("could not export scan: scan_id=%q response_code=%d message=%q", scanID, resp.ResponseCode(), resp.Message())
		return "", &requestFailedError{resp: resp}
	}

	payload, err := exportPayload(resp)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s.%s", scanID, opts.format)
	if compressor != nil {
		name += "." + opts.compress
	}

	path, err := fs.CleanJoin(opts.outputDir, name)
	if err != nil {
		return "", err
	}

	if err := writeExport(path, payload, compressor); err != nil {
		return "", err
	}

	logger.Info("exported scan: scan_id=%q path=%q size=%d xxhash=%016x", scanID, path, len(payload), xxhash.Sum64(payload))
	return path, nil
}

// exportPayload returns the bytes the server sent. Decoded JSON is written
// back out indented.
func exportPayload(resp *webinspect.Response) ([]byte, error) {
	switch data := resp.Data().(type) {
	case []byte:
		return data, nil
	case string:
		return []byte(data), nil
	}

	out, err := resp.DataJSON(true)
	if err != nil {
		return nil, fmt.Errorf("could not encode export: %w", err)
	}

	return []byte(out), nil
}

func writeExport(path string, payload []byte, compressor archives.Compressor) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("could not create export file: path=%q: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	var w io.WriteCloser = file
	if compressor != nil {
		if w, err = compressor.OpenWriter(file); err != nil {
			return fmt.Errorf("could not compress export: path=%q: %w", path, err)
		}
		defer func() {
			if closeErr := w.Close(); err == nil {
				err = closeErr
			}
		}()
	}

	if _, err = w.Write(payload); err != nil {
		return fmt.Errorf("could not write export: path=%q: %w", path, err)
	}

	return nil
}
