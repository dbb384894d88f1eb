package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/webbreaker/webinspect/pkg/config"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/proto"
	"github.com/webbreaker/webinspect/pkg/response"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

const cliLong = `Name:
  webinspect - Drive a WebInspect server from the command line

Description:
  The webinspect tool wraps the WebInspect REST API. Every API call is
  available as a subcommand (scan, policy, settings, macro, proxy) and prints
  the response in the configured format. The "listen" mode reads requests as
  JSON lines and is best for scripting many calls or integrating with other
  services.
`

const configDescription = `config file path
order of precedence:
1. --config/-c
2. env var WEBINSPECT_CONFIG
3. ${XDG_CONFIG_HOME}/webinspect/config.toml
4. /etc/webinspect/config.toml
5. The default config
`

var cfg *config.Config

// requestFailedError is returned when the server was reached but the
// response came back unsuccessful. The response has already been printed.
type requestFailedError struct {
	resp *webinspect.Response
}

func (e *requestFailedError) Error() string {
	return fmt.Sprintf("request failed: response_code=%d message=%q", e.resp.ResponseCode(), e.resp.Message())
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err = config.LocateAndLoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	if format, _ := cmd.Flags().GetString("format"); len(format) > 0 {
		cfg.Formatter.Format = format
	}

	if _, err := response.NewFormatter(cfg.Formatter); err != nil {
		return err
	}

	logger.Debug("loaded config: host=%q format=%q", cfg.Server.Host, cfg.Formatter.Format)
	return nil
}

func newClient() (*webinspect.Client, error) {
	return webinspect.NewClient(cfg.Server.ClientConfig())
}

// writeResponse prints the response and turns a failed one into an error
func writeResponse(cmd *cobra.Command, resp *webinspect.Response) error {
	formatter, err := response.NewFormatter(cfg.Formatter)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatter.Format(proto.NewResponse("", resp)))

	if !resp.Success() {
		return &requestFailedError{resp: resp}
	}

	return nil
}

// runWithClient builds a RunE that makes one API call and prints the result
func runWithClient(call func(ctx context.Context, client *webinspect.Client, args []string) *webinspect.Response) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		return writeResponse(cmd, call(cmd.Context(), client, args))
	}
}

// rootCommand provides a built Command for the app to use
func rootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:               "webinspect",
		Short:             "A client for the WebInspect REST API",
		Long:              cliLong,
		Run:               runHelp,
		PersistentPreRunE: loadConfig,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	flags := rootCommand.PersistentFlags()
	flags.StringP("config", "c", "", configDescription)
	flags.StringP("format", "f", "", "output format [JSON(default)|HUMAN|TOML|YAML]")

	rootCommand.AddCommand(
		scanCommand(),
		policyCommand(),
		settingsCommand(),
		macroCommand(),
		proxyCommand(),
		listenCommand(),
		versionCommand(),
	)

	return rootCommand
}

// exitCode maps the error returned by a command to the process exit code
func exitCode(err error) int {
	var failed *requestFailedError
	if errors.As(err, &failed) {
		return config.ExitCodeRequestFailed
	}

	return config.ExitCodeBlockingError
}

// Execute the command and parse the args
func Execute() {
	if err := rootCommand().ExecuteContext(context.Background()); err != nil {
		var failed *requestFailedError
		if !errors.As(err, &failed) {
			logger.Error("%v", err)
		}

		os.Exit(exitCode(err))
	}
}
