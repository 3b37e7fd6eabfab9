// Package cmd implements eventhubctl, the operator CLI for a running or
// configured Event Hub: config validation/scaffolding and a read-only debug
// dump against a running hub's debug server, built on a cobra root command
// (version flag sourced from build info, cobra subcommand tree); trimmed to
// the two concerns an event-hub operator actually needs — there is no
// module-generator concept here.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version information (set during build via -ldflags, falling back to
	// Go's embedded build info).
	Version string = "dev"
	Commit  string = "none"
	Date    string = "unknown"

	// OsExit allows tests to intercept process exit.
	OsExit = os.Exit
)

func init() {
	bi, ok := debug.ReadBuildInfo()
	if !ok || Version != "dev" {
		return
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			Commit = setting.Value
		case "vcs.time":
			Date = setting.Value
		}
	}
}

// NewRootCommand builds the eventhubctl root command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "eventhubctl",
		Short: "eventhubctl - operator tooling for the Event Hub",
		Long: `eventhubctl validates and scaffolds Event Hub runtime configuration,
and dumps diagnostic state from a running hub's debug server.`,
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Println(PrintVersion())
				OsExit(0)
				return
			}
			_ = cmd.Help()
		},
	}

	root.Flags().BoolP("version", "v", false, "Print version information")
	root.Version = Version

	root.AddCommand(NewConfigCommand())
	root.AddCommand(NewDebugCommand())
	return root
}

// PrintVersion renders the CLI's version banner.
func PrintVersion() string {
	return fmt.Sprintf("eventhubctl v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
