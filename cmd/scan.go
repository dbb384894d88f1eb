package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/webbreaker/webinspect/pkg/webinspect"
)

func scanCommand() *cobra.Command {
	scanCommand := &cobra.Command{
		Use:   "scan",
		Short: "Create, watch and export scans",
		Run:   runHelp,
	}

	scanCommand.AddCommand(
		scanCreateCommand(),
		listCommand("list", "List current and past scans", (*webinspect.Client).ListScans),
		listCommand("running", "List running scans", (*webinspect.Client).ListRunningScans),
		argCommand("get <scan-name>", "List the scans with a name", (*webinspect.Client).GetScanByName),
		argCommand("status <scan-id>", "Show the current status of a scan", (*webinspect.Client).GetCurrentStatus),
		argCommand("wait <scan-id>", "Wait for the status of a scan to change", (*webinspect.Client).WaitForStatusChange),
		argCommand("stop <scan-id>", "Stop a running scan", (*webinspect.Client).StopScan),
		argCommand("continue <scan-id>", "Continue a stopped scan", (*webinspect.Client).ContinueScan),
		argCommand("delete <scan-id>", "Delete a scan", (*webinspect.Client).DeleteScan),
		argCommand("issues <scan-id>", "Show the issues found by a scan", (*webinspect.Client).GetScanIssuesDetail),
		argCommand("log <scan-id>", "Show the log of a scan", (*webinspect.Client).GetScanLog),
		argCommand("crawl <scan-id>", "Show the site tree of a scan", (*webinspect.Client).GetScanCrawlJSON),
		scanExportCommand(),
	)

	return scanCommand
}

func scanCreateCommand() *cobra.Command {
	createCommand := &cobra.Command{
		Use:   "create",
		Short: "Start a scan",
		Long: `Start a scan. The overrides are a JSON object sent as the request body,
for example {"settingsName":"Default","overrides":{"scanName":"nightly"}}.`,
		Args: cobra.NoArgs,
		RunE: runScanCreate,
	}

	flags := createCommand.Flags()
	flags.String("overrides", "", "scan overrides as a JSON string")
	flags.String("overrides-file", "", "path to a file holding the scan overrides")
	createCommand.MarkFlagsMutuallyExclusive("overrides", "overrides-file")

	return createCommand
}

func runScanCreate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	var overrides any

	if value, _ := flags.GetString("overrides"); len(value) > 0 {
		overrides = value
	}

	if path, _ := flags.GetString("overrides-file"); len(path) > 0 {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("could not read overrides file: path=%q: %w", path, err)
		}
		overrides = data
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	return writeResponse(cmd, client.CreateScan(cmd.Context(), overrides))
}
