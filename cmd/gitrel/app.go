package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/config"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/github"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/platform"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/registry"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/release"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/target"
)

// app is the state every command builds on: where gitrel keeps its files,
// the parsed config, the host platform and the logger.
type app struct {
	opts  *globalOptions
	paths config.Paths
	cfg   *config.Config
	info  *platform.Info
	log   *zap.SugaredLogger
}

// setup reads the config directory and config.lua, then installs the
// process logger at the configured level.
func setup(cmd *cobra.Command, g *globalOptions) (*app, error) {
	ctx := cmd.Context()

	boot, err := config.NewLogger(config.DefaultLogLevel, g.verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	paths, err := config.ResolveDir(g.configDir)
	if err != nil {
		return nil, err
	}

	detector := platform.NewDetector()
	cfg, err := config.NewParser(detector, boot.Sugar()).ParseFile(ctx, paths.ConfigFile())
	if err != nil {
		return nil, errors.New(config.FormatError(err, g.verbose))
	}

	logger, err := config.NewLogger(cfg.Log.Level, g.verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	info, err := detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}
	log.Debugw("host platform", "os", info.OS, "arch", info.Arch, "abi", info.ABI, "config", paths.Dir)

	return &app{opts: g, paths: paths, cfg: cfg, info: info, log: log}, nil
}

// client builds the GitHub client, taking the token from flagToken or the
// configured fallbacks.
func (a *app) client(flagToken string) (*github.Client, error) {
	token, source, err := config.ResolveToken(flagToken, a.cfg, a.paths)
	if err != nil {
		return nil, err
	}
	a.log.Debugw("github token", "source", source)

	return github.NewClient(github.Config{
		BaseURL:   a.cfg.GitHub.APIURL,
		Token:     token,
		UserAgent: "gitrel/" + Version,
		Logger:    a.log,
	}), nil
}

func (a *app) selector() *asset.Selector {
	return asset.NewSelector(target.New(a.info))
}

func (a *app) resolver(client *github.Client) *release.Resolver {
	return release.NewResolver(client, a.selector(), release.Config{
		PerPage:  a.cfg.GitHub.PerPage,
		MaxPages: a.cfg.GitHub.MaxPages,
	}, a.log)
}

func (a *app) registry() (*registry.Registry, error) {
	reg, err := registry.Load(a.paths.RegistryFile())
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return reg, nil
}

// deps wires the install and update pipeline.
func (a *app) deps(client *github.Client, reg *registry.Registry) (service.Deps, error) {
	binDir, err := config.ResolveBinDir(a.cfg.Install.BinDir)
	if err != nil {
		return service.Deps{}, err
	}

	mgr, err := binary.NewManager(binary.Config{
		Requester: client,
		Progress:  progressFor(a.opts),
		Verify: binary.VerifyConfig{
			RequireChecksum: a.cfg.Verify.RequireChecksum,
			KeyringPath:     a.cfg.Verify.Keyring,
			MinisignKeyPath: a.cfg.Verify.MinisignKey,
		},
		GOOS:   a.info.OS,
		Logger: a.log,
	})
	if err != nil {
		return service.Deps{}, fmt.Errorf("create binary manager: %w", err)
	}

	return service.Deps{
		Resolver:  a.resolver(client),
		Installer: mgr,
		Registry:  reg,
		BinDir:    binDir,
		Reporter:  newReporter(a.opts),
		Logger:    a.log,
	}, nil
}

// finish prints the batch totals and turns a failed or partial batch into
// the command's error.
func finish(g *globalOptions, summary *service.Summary, err error) error {
	if summary != nil && len(summary.Results) > 1 {
		printSummary(g.stdout, summary)
	}
	if err != nil {
		return err
	}
	return summary.Err()
}
