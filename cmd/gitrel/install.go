package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/config"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
)

type installOptions struct {
	token  string
	rename string
	strip  bool
	force  bool
	path   string
	assets asset.Filter
	entry  asset.Filter
}

func newInstallCmd(g *globalOptions) *cobra.Command {
	opts := &installOptions{}
	cmd := &cobra.Command{
		Use:   "install <[owner/]repo[@version]>...",
		Short: "Install binaries from GitHub releases",
		Long: `Install one or more binaries from the latest release or a release
matching the version after @. The version is "*" for the latest release,
a semver constraint such as ^1.2 or ~0.9, or an exact tag.

When the owner is left out it defaults to the repository name.`,
		Example: `  gitrel install BurntSushi/ripgrep
  gitrel install sharkdp/bat@^0.24 sharkdp/fd
  gitrel install cli/cli -r gh --asset-glob '*linux_amd64.tar.gz'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, g, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.token, "token", "t", "", "GitHub token (default $GITREL_TOKEN or $GITHUB_TOKEN)")
	f.StringVarP(&opts.rename, "rename", "r", "", "install the binary under this name (single package only)")
	f.BoolVarP(&opts.strip, "strip", "s", false, "strip debug symbols from the installed binary")
	f.BoolVarP(&opts.force, "force", "f", false, "reinstall even when up to date, replacing a binary from another repository")
	f.StringVarP(&opts.path, "path", "p", "", "install directory (default from config or ~/.local/bin)")
	cmd.MarkFlagsMutuallyExclusive(addFilterFlags(f, "asset", "release asset", &opts.assets)...)
	cmd.MarkFlagsMutuallyExclusive(addFilterFlags(f, "entry", "archive entry", &opts.entry)...)
	return cmd
}

// addFilterFlags registers --<prefix>-glob, --<prefix>-regex and
// --<prefix>-contains filling dst, and returns their names.
func addFilterFlags(f *pflag.FlagSet, prefix, what string, dst *asset.Filter) []string {
	names := filterFlagNames(prefix)
	f.StringVar(&dst.Glob, names[0], "", "match the "+what+" name with a glob pattern")
	f.StringVar(&dst.Regex, names[1], "", "match the "+what+" name with a regular expression")
	f.StringVar(&dst.Contains, names[2], "", "match "+what+" names containing this text")
	return names
}

func filterFlagNames(prefix string) []string {
	return []string{prefix + "-glob", prefix + "-regex", prefix + "-contains"}
}

func runInstall(cmd *cobra.Command, g *globalOptions, opts *installOptions, specs []string) error {
	a, err := setup(cmd, g)
	if err != nil {
		return err
	}
	client, err := a.client(opts.token)
	if err != nil {
		return err
	}
	reg, err := a.registry()
	if err != nil {
		return err
	}
	deps, err := a.deps(client, reg)
	if err != nil {
		return err
	}

	path := opts.path
	if path != "" {
		if path, err = config.ResolveBinDir(path); err != nil {
			return err
		}
	}

	summary, err := service.NewInstallService(deps).Execute(cmd.Context(), service.InstallRequest{
		Specs: specs,
		Options: service.InstallOptions{
			Rename:      opts.rename,
			Strip:       opts.strip || a.cfg.Install.Strip,
			Force:       opts.force,
			Path:        path,
			AssetFilter: opts.assets,
			EntryFilter: opts.entry,
		},
	})
	return finish(g, summary, err)
}
