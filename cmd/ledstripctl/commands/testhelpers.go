package commands

import (
	"bytes"
	"context"
	"regexp"

	"github.com/pterm/pterm"

	"github.com/jmylchreest/ledstripd/pkg/client"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// runCommand executes the root command with args against c and returns
// everything written to stdout with pterm color disabled and ANSI codes
// stripped.
func runCommand(c client.ClientInterface, args ...string) (string, error) {
	oldPrintColor := pterm.PrintColor
	oldOutput := pterm.Output
	pterm.PrintColor = false
	pterm.Output = true
	defer func() {
		pterm.PrintColor = oldPrintColor
		pterm.Output = oldOutput
	}()

	var buf bytes.Buffer
	cmd := NewRootCommand("1.0.0", "abc123", "2026-01-01")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.WithValue(context.Background(), ClientContextKey, c))
	return ansiRegex.ReplaceAllString(buf.String(), ""), err
}
