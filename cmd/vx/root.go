package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/config"
	"github.com/terassyi/vx/internal/depgraph"
	vxerrors "github.com/terassyi/vx/internal/errors"
	"github.com/terassyi/vx/internal/installer"
	"github.com/terassyi/vx/internal/installer/command"
	"github.com/terassyi/vx/internal/metrics"
	"github.com/terassyi/vx/internal/pathmgr"
	"github.com/terassyi/vx/internal/platform"
	"github.com/terassyi/vx/internal/resolve"
	"github.com/terassyi/vx/internal/runtime"
)

// Standard process exit codes (spec §8).
const (
	exitOK               = 0
	exitGeneral          = 1
	exitCommandNotFound  = 2
	exitToolNotInstalled = 3
	exitConfigError      = 4
	exitNotExecutable    = 126
	exitSpawnFailed      = 127
)

// logLevelFlag implements pflag.Value for slog.Level, the same shape tomei
// uses for its own --log-level flag.
type logLevelFlag struct {
	level slog.Level
}

func (f *logLevelFlag) String() string { return strings.ToLower(f.level.String()) }
func (f *logLevelFlag) Type() string   { return "string" }
func (f *logLevelFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "debug":
		f.level = slog.LevelDebug
	case "info":
		f.level = slog.LevelInfo
	case "warn":
		f.level = slog.LevelWarn
	case "error":
		f.level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
	return nil
}
func (f *logLevelFlag) Level() slog.Level { return f.level }

var (
	globalLogLevel = &logLevelFlag{level: slog.LevelWarn}
	globalNoColor  bool
	globalHome     string
)

// rootCmd doubles as vx's asdf/mise-style transparent tool proxy: any
// first token that doesn't match a registered subcommand name is treated
// as `vx <tool> [args...]` and falls straight through to runToolProxy with
// its flags untouched, the same DisableFlagParsing technique xplat's own
// run subcommand uses to pass arguments through verbatim.
var rootCmd = &cobra.Command{
	Use:                "vx [tool[@version]] [args...]",
	Short:              "Universal developer tool version manager and execution proxy",
	SilenceUsage:       true,
	SilenceErrors:      true,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if v := os.Getenv(config.EnvDebug); v != "" {
			globalLogLevel.level = slog.LevelDebug
		} else if v := os.Getenv(config.EnvVerbose); v != "" {
			globalLogLevel.level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: globalLogLevel.Level()})))
		return nil
	},
	RunE: runToolProxy,
}

func init() {
	rootCmd.PersistentFlags().Var(globalLogLevel, "log-level", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&globalHome, "home", "", "Override VX_HOME")

	rootCmd.AddCommand(
		versionCmd,
		installCmd,
		uninstallCmd,
		whichCmd,
		listCmd,
		versionsCmd,
		switchCmd,
		runCmd,
		devCmd,
		setupCmd,
		syncCmd,
		envCmd,
		lockCmd,
		checkCmd,
		cacheCmd,
		infoCmd,
		metricsCmd,
		doctorCmd,
	)
}

// app bundles the shared, bootstrap-once state every command needs: the
// on-disk layout, the detected platform, the merged project configuration,
// the runtime registry, a version resolver, and the metrics sink each
// invocation writes a single record to on exit.
type app struct {
	paths    *pathmgr.Paths
	plat     platform.Platform
	cfg      *config.Config
	warnings []config.Warning
	registry *runtime.Registry
	resolver *resolve.Resolver
	sink     metrics.Sink
	errFmt   *vxerrors.Formatter
}

// bootstrap assembles an *app from the ambient environment: VX_HOME
// resolution, config layering (defaults → config.toml → vx.toml → env →
// flags), and provider-manifest registry discovery under
// <VX_HOME>/config/providers/*.toml.
func bootstrap() (*app, error) {
	var opts []pathmgr.Option
	if globalHome != "" {
		opts = append(opts, pathmgr.WithHome(globalHome))
	}
	paths, err := pathmgr.New(opts...)
	if err != nil {
		return nil, vxerrors.NewConfigError("failed to resolve VX_HOME", err)
	}
	plat := platform.Current()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, vxerrors.NewConfigError("failed to read working directory", err)
	}

	loader := config.NewLoader(config.DetectEnv())
	cfg, warnings, err := loader.Load(cwd, nil)
	if err != nil {
		return nil, vxerrors.NewConfigError("failed to load configuration", err)
	}
	for _, w := range warnings {
		slog.Warn(w.Message)
	}

	registry, err := loadRegistry(paths)
	if err != nil {
		return nil, err
	}

	executor := command.NewExecutor(cfg.ProjectRoot)
	resolver := resolve.NewResolver(executor, nil)

	return &app{
		paths:    paths,
		plat:     plat,
		cfg:      cfg,
		warnings: warnings,
		registry: registry,
		resolver: resolver,
		sink:     metrics.NewFileSink(paths.MetricsDir()),
		errFmt:   vxerrors.NewFormatter(os.Stderr, globalNoColor),
	}, nil
}

// providersDirName is where provider.toml manifests are discovered: one
// file per installable runtime, loaded into the registry at every
// invocation. Built-in (compiled-Go) runtimes register themselves from the
// same place a future native provider package would, but vx currently ships
// none, relying entirely on manifest-driven runtimes (spec component C5).
const providersDirName = "providers"

func loadRegistry(paths *pathmgr.Paths) (*runtime.Registry, error) {
	registry := runtime.NewRegistry()

	dir := filepath.Join(paths.ConfigDir(), providersDirName)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return registry, nil
	}
	if err != nil {
		return nil, vxerrors.NewConfigError("failed to read providers directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rt, err := runtime.LoadManifestRuntime(path, versionFetcherFor)
		if err != nil {
			return nil, vxerrors.NewConfigErrorAt(path, 0, 0, "failed to parse provider manifest", err)
		}
		if err := registry.Register(rt); err != nil {
			return nil, vxerrors.NewConfigError("failed to register provider "+entry.Name(), err)
		}
	}

	return registry, nil
}

// versionFetcherFor adapts a Resolver into the runtime.VersionFetcher shape
// ManifestRuntime.FetchVersions needs. loadRegistry hands it to every
// manifest runtime it loads; each call builds its own resolver over an
// executor with no working directory, not the bootstrapped app's resolver.
func versionFetcherFor(ctx context.Context, versionSource []string, name string) ([]runtime.VersionInfo, error) {
	executor := command.NewExecutor("")
	resolver := resolve.NewResolver(executor, nil)
	v, err := resolver.Resolve(ctx, versionSource, command.Vars{Name: name})
	if err != nil {
		return nil, err
	}
	return []runtime.VersionInfo{{Version: v}}, nil
}

// splitToolSpec separates a "tool" or "tool@version" first argument into
// its name and an optional inline version override.
func splitToolSpec(spec string) (name, versionOverride string) {
	name, version, ok := strings.Cut(spec, "@")
	if !ok {
		return spec, ""
	}
	return name, version
}

// recordInvocation writes one metrics record for the completed command and
// logs (never fails) any write error, since a metrics write failure must
// never change the process's observable exit code.
func recordInvocation(a *app, rec metrics.Record) {
	if a == nil || a.sink == nil {
		return
	}
	if err := a.sink.Write(rec); err != nil {
		slog.Warn("failed to write metrics record", "error", err)
		return
	}
	if err := metrics.Prune(a.paths.MetricsDir(), metricsRingSize); err != nil {
		slog.Warn("failed to prune metrics ring", "error", err)
	}
}

func errUnknownTool(name string) error {
	return vxerrors.New(vxerrors.CategoryResolve, fmt.Sprintf("unknown tool %q", name)).
		WithHint(fmt.Sprintf("no provider manifest registers %q; run `vx list` to see what's registered", name))
}

func errNotInstalled(name, version string) error {
	return vxerrors.New(vxerrors.CategoryInstall, fmt.Sprintf("%s %s is not installed", name, version)).
		WithHint(fmt.Sprintf("run `vx install %s@%s`", name, version))
}

func wrapExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// runToolProxy implements `vx <tool[@version]> [args...]`: resolve the
// version to run, install it (and its dependencies) if auto_install allows
// it, build the child's PATH and environment, and exec it transparently,
// forwarding stdio and the exit code (spec control flow: C6 → C8 → C7 →
// C2 → C9 → C12).
func runToolProxy(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	started := time.Now()
	name, versionOverride := splitToolSpec(args[0])
	toolArgs := args[1:]

	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	ctx := context.Background()
	code, execErr := execTool(ctx, a, name, versionOverride, toolArgs)

	recordInvocation(a, metrics.Record{
		Command:    "vx " + strings.Join(args, " "),
		Args:       toolArgs,
		Tool:       name,
		StartedAt:  started,
		FinishedAt: time.Now(),
		ExitCode:   code,
		Error:      errString(execErr),
	})

	if execErr != nil {
		return wrapExit(code, execErr)
	}
	if code != 0 {
		return wrapExit(code, fmt.Errorf("%s exited with code %d", name, code))
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// resolvedTool is one (runtime, version) pin produced by resolveToolChain,
// either the primary tool or one of its transitive dependencies.
type resolvedTool struct {
	rt      runtime.Runtime
	version string
}

// resolveToolChain looks up name in the registry, resolves its version
// (inline override, then vx.toml pin, then "latest"), and narrows +
// resolves every transitive dependency's version via the constraint engine
// (spec component C8).
func resolveToolChain(ctx context.Context, a *app, name, versionOverride string) (*resolvedTool, []resolvedTool, error) {
	rt, ok := a.registry.Lookup(name)
	if !ok {
		return nil, nil, errUnknownTool(name)
	}

	spec := versionOverride
	if spec == "" {
		spec = a.cfg.Tools[name]
	}
	if spec == "" {
		spec = "latest"
	}

	version, err := resolveVersion(ctx, a, rt, spec)
	if err != nil {
		return nil, nil, err
	}
	primary := resolvedTool{rt: rt, version: version}

	deps, err := resolveDependencies(ctx, a, rt)
	if err != nil {
		return nil, nil, err
	}

	return &primary, deps, nil
}

// resolveDependencies walks rt's direct dependency references, narrowing
// any repeated dependency name across multiple declarers into one
// constraint via depgraph.NarrowConstraints before selecting a version.
func resolveDependencies(ctx context.Context, a *app, rt runtime.Runtime) ([]resolvedTool, error) {
	byName := map[string][]depgraph.Constraint{}
	var order []string
	for _, dep := range rt.Dependencies() {
		if _, seen := byName[dep.Name]; !seen {
			order = append(order, dep.Name)
		}
		byName[dep.Name] = append(byName[dep.Name], depgraph.Constraint{
			Min:         dep.Constraint.Min,
			Max:         dep.Constraint.Max,
			Recommended: dep.Constraint.Recommended,
		})
	}

	var resolved []resolvedTool
	for _, depName := range order {
		depRt, ok := a.registry.Lookup(depName)
		if !ok {
			return nil, vxerrors.New(vxerrors.CategoryDependency, fmt.Sprintf("dependency %q is not a registered tool", depName))
		}
		narrowed, err := depgraph.NarrowConstraints(depName, byName[depName])
		if err != nil {
			return nil, vxerrors.Wrap(vxerrors.CategoryDependency, fmt.Sprintf("could not satisfy constraints for %q", depName), err)
		}

		installed, err := a.paths.ListStoreVersions(depName, a.plat)
		if err != nil {
			return nil, vxerrors.NewInstallError(depName, "resolve", err)
		}
		available, err := fetchVersionStrings(ctx, depRt)
		if err != nil {
			return nil, err
		}

		version, err := depgraph.SelectVersion(depName, narrowed, installed, available)
		if err != nil {
			return nil, vxerrors.Wrap(vxerrors.CategoryDependency, fmt.Sprintf("no version of %q satisfies its dependents", depName), err)
		}
		resolved = append(resolved, resolvedTool{rt: depRt, version: version})
	}
	return resolved, nil
}

func fetchVersionStrings(ctx context.Context, rt runtime.Runtime) ([]string, error) {
	infos, err := rt.FetchVersions(ctx)
	if err != nil {
		return nil, vxerrors.NewResolveError(rt.Name(), "", nil)
	}
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Version)
	}
	return out, nil
}

// resolveVersion turns a version-spec string into a concrete version. Only
// an exact version-spec (no "latest"/"lts"/channel keyword, no "^"/"~"
// range, no bare major/major.minor prefix) that is already present in the
// store is shortcut without consulting the upstream catalog; every other
// spec form is matched against the freshly-fetched VersionInfo list so
// e.g. "latest" always reflects what's actually published, not just what
// happens to already be installed.
func resolveVersion(ctx context.Context, a *app, rt runtime.Runtime, spec string) (string, error) {
	if exact, ok := exactSemverSpec(spec); ok {
		installed, err := a.paths.ListStoreVersions(rt.Name(), a.plat)
		if err != nil {
			return "", vxerrors.NewInstallError(rt.Name(), "resolve", err)
		}
		for _, v := range installed {
			if iv, err := semver.NewVersion(v); err == nil && iv.Equal(exact) {
				return v, nil
			}
		}
	}

	infos, err := rt.FetchVersions(ctx)
	if err != nil {
		return "", vxerrors.NewResolveError(rt.Name(), spec, nil)
	}
	remote := make([]resolve.Candidate, 0, len(infos))
	for _, info := range infos {
		remote = append(remote, resolve.Candidate{
			Version:    info.Version,
			Prerelease: info.Prerelease,
			LTS:        info.LTS,
			Channel:    info.Channel,
		})
	}
	c, err := resolve.MatchSpec(remote, spec)
	if err != nil {
		near := make([]string, 0, len(remote))
		for _, r := range remote {
			near = append(near, r.Version)
		}
		return "", vxerrors.NewResolveError(rt.Name(), spec, near)
	}
	return c.Version, nil
}

// exactSemverSpec reports whether spec names one specific version rather
// than a keyword, range, or prefix, returning its parsed form. "latest",
// "lts", "stable"/"beta"/"nightly", "^"/"~" ranges, and bare major or
// major.minor prefixes ("22", "22.4") all return false: the spec §4.6
// store-first shortcut (step a) applies only to an exact version already
// present in the store.
func exactSemverSpec(spec string) (*semver.Version, bool) {
	switch spec {
	case "latest", "lts", "stable", "beta", "nightly":
		return nil, false
	}
	if strings.HasPrefix(spec, "^") || strings.HasPrefix(spec, "~") {
		return nil, false
	}
	sv, err := semver.NewVersion(spec)
	if err != nil {
		return nil, false
	}
	// A bare "22" or "22.4" parses as a full semver (22.0.0, 22.4.0) via
	// Masterminds/semver's coercion, but it's a prefix match, not an exact
	// one — only treat it as exact if spec itself round-trips to the same
	// dotted form semver.Version.String() would produce for a 3-component
	// version, i.e. it already has at least a major.minor.patch shape.
	if strings.Count(spec, ".") < 2 {
		return nil, false
	}
	return sv, true
}

// ensureInstalled installs t if it is not already present in the store,
// honoring auto_install: a missing, not-auto-installable tool is reported
// as exitToolNotInstalled rather than silently downloaded.
func ensureInstalled(ctx context.Context, a *app, t resolvedTool) (*installer.Result, error) {
	relExec := t.rt.ExecutableRelativePath(t.version, a.plat)
	if a.paths.IsVersionInStore(t.rt.Name(), t.version, a.plat, relExec) {
		return &installer.Result{
			Tool:           t.rt.Name(),
			Version:        t.version,
			Platform:       a.plat,
			InstallPath:    a.paths.PlatformStoreDir(t.rt.Name(), t.version, a.plat),
			ExecutablePath: a.paths.ExecutablePath(t.rt.Name(), t.version, a.plat, relExec),
		}, nil
	}
	if !a.cfg.Settings.AutoInstall {
		return nil, vxerrors.New(vxerrors.CategoryInstall, fmt.Sprintf("%s %s is not installed", t.rt.Name(), t.version)).
			WithHint(fmt.Sprintf("run `vx install %s@%s`, or enable settings.auto_install", t.rt.Name(), t.version))
	}

	pipeline := installer.New(a.paths, a.plat)
	return pipeline.Install(ctx, t.rt, t.version)
}
