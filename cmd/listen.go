package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webbreaker/webinspect/pkg/config"
	"github.com/webbreaker/webinspect/pkg/dispatch"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/proto"
	"github.com/webbreaker/webinspect/pkg/response"
)

// maxRequestSize caps a single request line (scan overrides can be large)
const maxRequestSize = 16 * 1024 * 1024

const listenLong = `Listen for JSON lines requests on stdin and write one JSON line response
per request to stdout. Requests look like:

  {"id":"r-1","operation":"get-current-status","priority":5,"args":{"scan_id":"..."}}

Higher priorities run first. Operation names ignore case, dashes and
underscores (ListScans, list_scans and list-scans all work).

Operations:
  `

func listenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Run API operations read as JSON lines",
		Long:  listenLong + strings.Join(dispatch.OperationNames(), "\n  ") + "\n",
		Args:  cobra.NoArgs,
		RunE:  runListen,
	}
}

func runListen(cmd *cobra.Command, args []string) error {
	dispatcher, err := dispatch.NewDispatcher(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	// Listen mode always speaks JSON lines
	formatter, err := response.NewFormatter(config.Formatter{Format: "JSON"})
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		out := cmd.OutOrStdout()
		for resp := range dispatcher.Responses() {
			fmt.Fprintln(out, formatter.Format(resp))
		}
	}()

	dispatcher.Start()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		var request proto.Request
		if err := json.Unmarshal([]byte(line), &request); err != nil {
			requestID := proto.RequestID([]byte(line))
			logger.Error("could not parse request: request_id=%q error=%q", requestID, err)
			dispatcher.Reject(requestID, err)
			continue
		}

		dispatcher.Send(&request)
	}

	_ = dispatcher.Close()
	<-done

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read requests: %w", err)
	}

	return nil
}
