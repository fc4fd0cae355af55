// Package commands implements the ledstripctl command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ledstripd/internal/logging"
	"github.com/jmylchreest/ledstripd/pkg/client"
)

// ClientContextKey is used for storing the client in the command context.
// Tests place a mock under it before executing a command.
var ClientContextKey = &struct{}{}

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	var (
		socket    string
		apiURL    string
		token     string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:          "ledstripctl",
		Short:        "Control an LED strip",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(cmd.ErrOrStderr(), logLevel, logFormat).Logger
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if _, ok := ctx.Value(ClientContextKey).(client.ClientInterface); ok {
				return nil
			}
			cmd.SetContext(context.WithValue(ctx, ClientContextKey, newClient(logger, socket, apiURL, token)))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&socket, "socket", "", "Path to ledstripd socket")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Use the HTTP API at this URL instead of the socket")
	cmd.PersistentFlags().StringVar(&token, "token", "", "API token for --api-url")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		newVersionCommand(version, commit, buildDate),
		newStatusCommand(),
		newSetCommand(),
		newPowerCommand("on", true),
		newPowerCommand("off", false),
		newIdentifyCommand(),
		newLogLevelCommand(),
		newDiscoverCommand(),
	)

	return cmd
}

func newClient(logger *slog.Logger, socket, apiURL, token string) client.ClientInterface {
	if apiURL != "" {
		return client.NewHTTP(logger, apiURL, token)
	}
	return client.New(logger, socket)
}

// clientFrom returns the client stored by the root command.
func clientFrom(cmd *cobra.Command) (client.ClientInterface, error) {
	c, ok := cmd.Context().Value(ClientContextKey).(client.ClientInterface)
	if !ok {
		return nil, fmt.Errorf("no client configured")
	}
	return c, nil
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client:\n")
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Build Date: %s\n", buildDate)

			c, err := clientFrom(cmd)
			if err != nil {
				return
			}
			resp, err := c.GetVersion()
			if err != nil {
				fmt.Fprintf(out, "\nDaemon: not reachable\n")
				return
			}
			fmt.Fprintf(out, "\nDaemon:\n")
			fmt.Fprintf(out, "  Version:    %v\n", resp["version"])
			fmt.Fprintf(out, "  Commit:     %v\n", resp["commit"])
			fmt.Fprintf(out, "  Build Date: %v\n", resp["build_date"])
		},
	}
}
