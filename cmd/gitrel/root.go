package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configDir  string
	verbose    bool
	noProgress bool

	stdout io.Writer
	stderr io.Writer
	// interactive reports whether stderr is a terminal. Set by run.
	interactive bool
}

func newRootCmd(g *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "gitrel",
		Short: "Install executables from GitHub releases",
		Long: `gitrel installs, updates and uninstalls prebuilt executables published
as GitHub release assets. It picks the asset built for this OS, CPU and
ABI, extracts the binary from whatever archive it ships in and remembers
what was installed so later runs only download what changed.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetOut(g.stdout)
	root.SetErr(g.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configDir, "config-dir", "", "configuration directory (default $GITREL_CONFIG_DIR or <user config dir>/gitrel)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "print debug logs")
	pf.BoolVar(&g.noProgress, "no-progress", false, "do not draw download progress bars")

	root.AddCommand(
		newInstallCmd(g),
		newUpdateCmd(g),
		newUninstallCmd(g),
		newListCmd(g),
		newInfoCmd(g),
	)
	return root
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &globalOptions{
		stdout:      stdout,
		stderr:      stderr,
		interactive: isTerminal(stderr),
	}
	root := newRootCmd(g)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
