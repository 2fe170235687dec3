// Command cubedawd is the headless engine runner of §4.F.v: a cobra
// CLI wrapping internal/host's scheduler for demonstration, benchmarking,
// and plugin-author tooling, in place of the teacher's bubbletea TUI
// (out of scope here — spec.md never describes a UI).
//
// Grounded on the teacher's main.go for the surrounding ambient
// concerns it shares (os/signal-driven cleanup, log.Printf-style
// diagnostics); the subcommand structure itself follows cobra's own
// idiom since the teacher uses the stdlib flag package instead.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cubedawd",
		Short: "Headless runner for the cubedaw audio engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to an engine.json config file (defaults built in if unset)")
	root.AddCommand(newRunCommand())
	root.AddCommand(newBenchCommand())
	root.AddCommand(newValidatePluginCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
