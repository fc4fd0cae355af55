package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// newLogLevelCommand creates the log-level command
func newLogLevelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log-level [level]",
		Short: "Show or change the daemon log level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFrom(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				level, err := c.GetLevel()
				if err != nil {
					return fmt.Errorf("failed to get log level: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), level)
				return nil
			}

			if err := c.SetLevel(args[0]); err != nil {
				return fmt.Errorf("failed to set log level: %w", err)
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Log level set to %s", args[0])
			return nil
		},
	}
}
