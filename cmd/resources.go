package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/webbreaker/webinspect/pkg/id"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

// argCommand builds a command that passes its single argument to call
func argCommand(use, short string, call func(*webinspect.Client, context.Context, string) *webinspect.Response) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: runWithClient(func(ctx context.Context, client *webinspect.Client, args []string) *webinspect.Response {
			return call(client, ctx, args[0])
		}),
	}
}

// listCommand builds a command without arguments
func listCommand(use, short string, call func(*webinspect.Client, context.Context) *webinspect.Response) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: runWithClient(func(ctx context.Context, client *webinspect.Client, _ []string) *webinspect.Response {
			return call(client, ctx)
		}),
	}
}

func policyCommand() *cobra.Command {
	policyCommand := &cobra.Command{
		Use:   "policy",
		Short: "Manage SecureBase policies",
		Run:   runHelp,
	}

	getCommand := &cobra.Command{
		Use:   "get <policy-guid>",
		Short: "Show a policy by GUID, or by name with --name",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")

			if (len(name) > 0) == (len(args) > 0) {
				return fmt.Errorf("expected a policy guid or --name: args=%d", len(args))
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			if len(name) > 0 {
				return writeResponse(cmd, client.GetPolicyByName(cmd.Context(), name))
			}

			return writeResponse(cmd, client.GetPolicyByGUID(cmd.Context(), args[0]))
		},
	}
	getCommand.Flags().String("name", "", "look the policy up by name")

	policyCommand.AddCommand(
		listCommand("list", "List the policies", (*webinspect.Client).ListPolicies),
		getCommand,
		argCommand("delete <policy-guid>", "Delete a policy", (*webinspect.Client).DeletePolicy),
		argCommand("upload <file>", "Upload a policy file", (*webinspect.Client).UploadPolicy),
	)

	return policyCommand
}

func settingsCommand() *cobra.Command {
	settingsCommand := &cobra.Command{
		Use:   "settings",
		Short: "Manage scan settings files",
		Run:   runHelp,
	}

	wiswagCommand := &cobra.Command{
		Use:   "wiswag <swagger-url> <settings-name>",
		Short: "Build a settings file from a swagger definition",
		Args:  cobra.ExactArgs(2),
		RunE: runWithClient(func(ctx context.Context, client *webinspect.Client, args []string) *webinspect.Response {
			return client.CreateWiswag(ctx, args[0], args[1])
		}),
	}

	settingsCommand.AddCommand(
		listCommand("list", "List the settings files", (*webinspect.Client).ListSettings),
		argCommand("download <settings-name>", "Show a settings file", (*webinspect.Client).DownloadSettings),
		argCommand("upload <file>", "Upload a settings file", (*webinspect.Client).UploadSettings),
		wiswagCommand,
	)

	return settingsCommand
}

func macroCommand() *cobra.Command {
	macroCommand := &cobra.Command{
		Use:   "macro",
		Short: "Manage webmacros",
		Run:   runHelp,
	}

	macroCommand.AddCommand(
		listCommand("list", "List the webmacros", (*webinspect.Client).ListWebmacros),
		argCommand("upload <file>", "Upload a webmacro", (*webinspect.Client).UploadWebmacro),
	)

	return macroCommand
}

func proxyCommand() *cobra.Command {
	proxyCommand := &cobra.Command{
		Use:   "proxy",
		Short: "Manage WebInspect proxies",
		Run:   runHelp,
	}

	startCommand := &cobra.Command{
		Use:   "start",
		Short: "Start a proxy",
		Args:  cobra.NoArgs,
		RunE:  runProxyStart,
	}
	startFlags := startCommand.Flags()
	startFlags.String("id", "", "proxy instance ID (random when unset)")
	startFlags.Int("port", 0, "port the proxy listens on")
	startFlags.String("address", "127.0.0.1", "address the proxy listens on")
	_ = startCommand.MarkFlagRequired("port")

	uploadMacroCommand := &cobra.Command{
		Use:   "upload-macro <instance-id> <file>",
		Short: "Save a webmacro onto a proxy",
		Args:  cobra.ExactArgs(2),
		RunE: runWithClient(func(ctx context.Context, client *webinspect.Client, args []string) *webinspect.Response {
			return client.UploadWebmacroProxy(ctx, args[0], args[1])
		}),
	}

	proxyCommand.AddCommand(
		startCommand,
		argCommand("delete <instance-id>", "Stop and delete a proxy", (*webinspect.Client).DeleteProxy),
		listCommand("list", "List the proxies", (*webinspect.Client).ListProxies),
		argCommand("info <instance-id>", "Show a proxy", (*webinspect.Client).GetProxyInformation),
		uploadMacroCommand,
		argCommand("download-settings <instance-id>", "Show the settings recorded by a proxy", (*webinspect.Client).DownloadProxySetting),
		argCommand("download-macro <instance-id>", "Show the webmacro recorded by a proxy", (*webinspect.Client).DownloadProxyWebmacro),
		listCommand("rootcert", "Show the WebInspect root certificate", (*webinspect.Client).CertProxy),
	)

	return proxyCommand
}

func runProxyStart(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	instanceID, _ := flags.GetString("id")
	if len(instanceID) == 0 {
		instanceID = id.InstanceID()
	}

	port, err := flags.GetInt("port")
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: port=%d", port)
	}

	address, _ := flags.GetString("address")

	client, err := newClient()
	if err != nil {
		return err
	}

	return writeResponse(cmd, client.StartProxy(cmd.Context(), instanceID, port, address))
}
