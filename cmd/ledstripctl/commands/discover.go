package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/ledstripd/internal/advertise"
)

var discoverStrips = advertise.Discover

// newDiscoverCommand creates the discover command
func newDiscoverCommand() *cobra.Command {
	var (
		timeout   time.Duration
		parseable bool
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find strips advertised on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			found, err := discoverStrips(cmd.Context(), logger, timeout)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if parseable {
				for _, f := range found {
					fmt.Fprintf(out, "id=%q name=%q version=%q url=%q\n", f.ID, f.Name, f.Version, f.URL())
				}
				return nil
			}
			if len(found) == 0 {
				pterm.Info.WithWriter(out).Println("No strips found")
				return nil
			}

			data := pterm.TableData{{"Name", "ID", "Version", "URL"}}
			for _, f := range found {
				data = append(data, []string{f.Name, f.ID, f.Version, f.URL()})
			}
			return pterm.DefaultTable.WithWriter(out).WithHasHeader().WithData(data).Render()
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "How long to browse")
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}
