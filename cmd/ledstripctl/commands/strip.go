package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// settableProperties are the properties accepted by set.
var settableProperties = []string{"on", "brightness", "hue", "saturation", "white"}

// newStatusCommand creates the status command
func newStatusCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "status [property]",
		Short: "Show the strip state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFrom(cmd)
			if err != nil {
				return err
			}
			s, err := c.GetState()
			if err != nil {
				return fmt.Errorf("failed to get strip state: %w", err)
			}
			flat := flattenStrip(s)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				property := strings.ToLower(args[0])
				value, ok := flat[property]
				if !ok {
					return fmt.Errorf("invalid property: %s", property)
				}
				if parseable {
					fmt.Fprintf(out, "%s=%v\n", property, value)
				} else {
					fmt.Fprintln(out, value)
				}
				return nil
			}

			if parseable {
				fmt.Fprintln(out, StripParseable(flat))
				return nil
			}
			return pterm.DefaultTable.WithWriter(out).WithData(StripTableData(flat)).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newSetCommand creates the set command
func newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [property] [value] [property value]...",
		Short: "Set strip properties (on, brightness, hue, saturation, white)",
		Long: `Set one or more strip properties. The strip fades to the new target.

Examples:
  ledstripctl set brightness 40
  ledstripctl set hue 210 saturation 80
  ledstripctl set white on`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFrom(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				args, err = promptProperty()
				if err != nil {
					return err
				}
			}
			if len(args)%2 != 0 {
				return fmt.Errorf("expected property/value pairs, got %d arguments", len(args))
			}

			props := make(map[string]any, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				property := strings.ToLower(args[i])
				value, err := parsePropertyValue(property, args[i+1])
				if err != nil {
					return err
				}
				props[property] = value
			}

			if err := c.SetState(props); err != nil {
				return fmt.Errorf("failed to set strip state: %w", err)
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Updated %s", joinKeys(args))
			return nil
		},
	}
	return cmd
}

// promptProperty asks for a property and a value interactively.
func promptProperty() ([]string, error) {
	property, err := pterm.DefaultInteractiveSelect.
		WithOptions(settableProperties).
		Show("Select property to set")
	if err != nil {
		return nil, fmt.Errorf("failed to select property: %w", err)
	}

	var value string
	switch property {
	case "on", "white":
		value, err = pterm.DefaultInteractiveSelect.
			WithOptions([]string{"on", "off"}).
			Show("Select state")
	default:
		value, err = pterm.DefaultInteractiveTextInput.
			WithMultiLine(false).
			Show(fmt.Sprintf("Enter %s", property))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read value: %w", err)
	}
	return []string{property, value}, nil
}

// parsePropertyValue converts a command line value to the type the daemon
// expects for property. Ranges are checked by the daemon.
func parsePropertyValue(property, raw string) (any, error) {
	switch property {
	case "on", "white":
		switch strings.ToLower(raw) {
		case "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no":
			return false, nil
		}
		return nil, fmt.Errorf("invalid %s value %q: use on or off", property, raw)
	case "brightness":
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid brightness value: %w", err)
		}
		return v, nil
	case "hue", "saturation":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", property, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("invalid property: %s. Must be one of: %s", property, strings.Join(settableProperties, ", "))
	}
}

func joinKeys(pairs []string) string {
	keys := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		keys = append(keys, strings.ToLower(pairs[i]))
	}
	return strings.Join(keys, ", ")
}

// newPowerCommand creates the on and off commands
func newPowerCommand(name string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Turn the strip %s", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFrom(cmd)
			if err != nil {
				return err
			}
			if err := c.SetState(map[string]any{"on": on}); err != nil {
				return fmt.Errorf("failed to turn strip %s: %w", name, err)
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Strip turned %s", name)
			return nil
		},
	}
}

// newIdentifyCommand creates the identify command
func newIdentifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Blink the strip so it can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFrom(cmd)
			if err != nil {
				return err
			}
			if err := c.Identify(); err != nil {
				return fmt.Errorf("failed to identify strip: %w", err)
			}
			pterm.Info.WithWriter(cmd.OutOrStdout()).Println("Identifying strip")
			return nil
		},
	}
}
