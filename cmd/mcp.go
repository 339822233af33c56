package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

const mcpPrelude = `Norwegian laws and regulations can be looked up with the %[1]s CLI.
Run the commands below in a shell; references look like
LOV-2005-06-17-62_10-4 (law base, "_", chapter index).

`

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (publishes CLI instructions only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := binaryName()
		instructions := fmt.Sprintf(mcpPrelude, name) + agentHelp(name)

		s := server.NewMCPServer("lovvelger-cli", "1.0.0",
			server.WithInstructions(instructions),
		)
		return server.ServeStdio(s)
	},
}

// agentHelp lists the user-facing commands with their examples, with the
// binary name substituted so the agent can run them verbatim.
func agentHelp(name string) string {
	var b strings.Builder
	for _, c := range rootCmd.Commands() {
		switch c.Name() {
		case "daemon", "mcp", "help", "completion":
			continue
		}
		fmt.Fprintf(&b, "%s %s\n  %s\n", name, c.Use, c.Short)
		for _, sub := range c.Commands() {
			fmt.Fprintf(&b, "%s %s %s\n  %s\n", name, c.Name(), sub.Use, sub.Short)
		}
		if c.Example != "" {
			b.WriteString(strings.ReplaceAll(c.Example, "lovvelger ", name+" "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// binaryName returns "lovvelger" if it's in PATH and points to the current
// binary, otherwise returns the full path to the binary.
func binaryName() string {
	exe, err := os.Executable()
	if err != nil {
		return "lovvelger"
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "lovvelger"
	}

	path, err := exec.LookPath("lovvelger")
	if err == nil {
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil && resolved == exe {
			return "lovvelger"
		}
	}

	return exe
}
