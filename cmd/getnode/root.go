package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/getnode/internal/config"
	"github.com/ZebulonRouseFrantzich/getnode/internal/fetch"
	"github.com/ZebulonRouseFrantzich/getnode/internal/install"
	"github.com/ZebulonRouseFrantzich/getnode/internal/logging"
	"github.com/ZebulonRouseFrantzich/getnode/internal/platform"
	"github.com/ZebulonRouseFrantzich/getnode/internal/shell"
)

// cacheDirName is the directory below the user cache dir used when neither
// --output nor cache_dir is set.
const cacheDirName = "getnode"

// newDetector is replaced in tests.
var newDetector = platform.NewDetector

type rootOptions struct {
	arch       string
	platform   string
	output     string
	mirror     string
	configPath string
	keyring    string
	env        string
	verbose    bool
	progress   bool
	retries    int
	timeout    time.Duration
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	fmt.Fprintf(stderr, "Error: %s\n", config.FormatError(err, verbose))
	return exitCode(err)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "getnode [flags] <version>",
		Short: "Download a Node.js release",
		Long: `getnode downloads an official Node.js release for a platform and
architecture, verifies it against the release checksums and installs it
atomically. The install path is printed on success.

Concurrent invocations for the same release are safe: exactly one of them
installs and the others report the same path.`,
		Example: `  getnode 18.17.1
  getnode --platform darwin --arch arm64 v20.5.0
  NODE_MIRROR=https://npmmirror.com/mirrors/node getnode 18.17.1`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, args[0], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("getnode {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	f := cmd.Flags()
	f.StringVar(&opts.arch, "arch", "", "target architecture (default: host)")
	f.StringVar(&opts.platform, "platform", "", "target platform (default: host)")
	f.StringVarP(&opts.output, "output", "o", "", "install path (default: <cache dir>/<version>/<platform>/<arch>)")
	f.StringVar(&opts.mirror, "mirror", "", "distribution mirror URL (default: "+fetch.DefaultMirror+")")
	f.StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/getnode/config.lua)")
	f.StringVar(&opts.keyring, "keyring", "", "OpenPGP keyring for verifying "+fetch.SignatureFile)
	f.StringVar(&opts.env, "env", "", "print commands that put the release on PATH for a shell (bash, zsh, fish, powershell or auto)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&opts.progress, "progress", false, "log download progress")
	f.IntVar(&opts.retries, "retries", fetch.DefaultRetries, "retries per request")
	f.DurationVar(&opts.timeout, "timeout", fetch.DefaultTimeout, "timeout per request")

	return cmd
}

func runGet(cmd *cobra.Command, opts *rootOptions, version string, stdout, stderr io.Writer) error {
	ctx := cmd.Context()
	logger := logging.NewCharm(stderr, "getnode", opts.verbose)

	host, err := newDetector().Detect(ctx)
	if err != nil {
		return err
	}

	cfg, cfgPath, err := config.NewParser(staticDetector{host}).WithLogger(logger).Load(ctx, opts.configPath)
	if err != nil {
		return usageError(err)
	}
	if cfgPath != "" {
		logger.Debug("using config", "path", cfgPath)
	}

	req, err := resolveRequest(opts, cfg, host, version)
	if err != nil {
		return err
	}
	if req.Platform == "linux" && host.IsMusl() && !cmd.Flags().Changed("platform") {
		logger.Warn("official Node.js builds are linked against glibc", "distro", host.Distro)
	}

	fetchOpts, err := resolveFetchOptions(cmd, opts, cfg, logger)
	if err != nil {
		return err
	}

	var sh shell.ShellType
	if opts.env != "" {
		if sh, err = resolveShell(ctx, opts.env); err != nil {
			return err
		}
	}

	installer, err := install.New(fetch.New(fetchOpts...), install.WithLogger(logger))
	if err != nil {
		return err
	}

	result, err := installer.AcquireResult(ctx, req)
	if err != nil {
		return err
	}
	logger.Debug("done", "installed", result.Installed, "duration", result.Duration.Round(time.Millisecond))
	if sh == "" {
		fmt.Fprintln(stdout, result.Path)
		return nil
	}
	env, err := shell.Environment(sh, binDir(result.Path, req.Platform))
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, env)
	return nil
}

// resolveShell maps the --env value to a shell, detecting it for "auto".
func resolveShell(ctx context.Context, name string) (shell.ShellType, error) {
	if strings.EqualFold(name, "auto") {
		detected := shell.DetectShell(ctx)
		if !detected.Shell.IsValid() {
			return "", usageError(errors.New("cannot detect shell; pass --env bash, zsh, fish or powershell"))
		}
		return detected.Shell, nil
	}
	sh := shell.Parse(name)
	if err := shell.ValidateShell(sh); err != nil {
		return "", usageError(&shell.UnsupportedShellError{Shell: name})
	}
	return sh, nil
}

// binDir returns the directory holding the node executable of an install.
func binDir(path, nodePlatform string) string {
	if nodePlatform == "win" {
		return filepath.Dir(path)
	}
	return filepath.Join(path, "bin")
}

// resolveRequest applies flags, environment and config on top of the host
// defaults.
func resolveRequest(opts *rootOptions, cfg *config.Config, host *platform.Info, version string) (install.Request, error) {
	req := install.Request{Version: version}

	name := host.NodePlatform
	if opts.platform != "" {
		name = opts.platform
	}
	if name == "" {
		return req, usageError(fmt.Errorf("no Node.js distribution for %s; use --platform", host.OS))
	}
	p, err := platform.NodePlatform(name)
	if err != nil {
		return req, usageError(err)
	}
	req.Platform = p

	arch := host.NodeArch
	if opts.arch != "" {
		arch = opts.arch
	}
	if arch == "" {
		return req, usageError(fmt.Errorf("no Node.js distribution for %s; use --arch", host.Arch))
	}
	a, err := platform.NodeArch(arch)
	if err != nil {
		return req, usageError(err)
	}
	req.Arch = a

	req.Fetch.Mirror = fetch.ResolveMirror(opts.mirror, fetch.MirrorFromEnv(), cfg.Mirror)

	req.Output = opts.output
	if req.Output == "" {
		req.Output, err = defaultOutput(cfg.CacheDir, req)
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

// defaultOutput returns <cacheDir>/<version>/<platform>/<arch>, with
// node.exe appended on Windows.
func defaultOutput(cacheDir string, req install.Request) (string, error) {
	var err error
	if cacheDir == "" {
		cacheDir, err = os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine cache directory; use --output: %w", err)
		}
		cacheDir = filepath.Join(cacheDir, cacheDirName)
	} else if cacheDir, err = config.ExpandPath(cacheDir); err != nil {
		return "", err
	}

	version := strings.TrimPrefix(strings.TrimSpace(req.Version), "v")
	if version == "" {
		return "", usageError(errors.New("version is required"))
	}
	out := filepath.Join(cacheDir, version, req.Platform, req.Arch)
	if req.Platform == "win" {
		out = filepath.Join(out, "node.exe")
	}
	return out, nil
}

func resolveFetchOptions(cmd *cobra.Command, opts *rootOptions, cfg *config.Config, logger logging.Logger) ([]fetch.Option, error) {
	flags := cmd.Flags()

	retries := opts.retries
	if !flags.Changed("retries") && cfg.Retries != nil {
		retries = *cfg.Retries
	}
	if retries < 0 || retries > config.MaxRetries {
		return nil, usageError(fmt.Errorf("retries must be between 0 and %d", config.MaxRetries))
	}

	timeout := opts.timeout
	if !flags.Changed("timeout") && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	progress := opts.progress
	if !flags.Changed("progress") && cfg.Progress != nil {
		progress = *cfg.Progress
	}

	fetchOpts := []fetch.Option{
		fetch.WithLogger(logger),
		fetch.WithRetries(retries),
		fetch.WithTimeout(timeout),
		fetch.WithProgress(progress),
		fetch.WithUserAgent("getnode/" + strings.TrimPrefix(Version, "v")),
	}

	keyringPath := opts.keyring
	if keyringPath == "" {
		keyringPath = cfg.Keyring
	}
	if keyringPath != "" {
		path, err := config.ExpandPath(keyringPath)
		if err != nil {
			return nil, err
		}
		keyring, err := fetch.LoadKeyring(path)
		if err != nil {
			return nil, usageError(err)
		}
		logger.Debug("verifying checksum signatures", "keyring", path, "keys", len(keyring))
		fetchOpts = append(fetchOpts, fetch.WithKeyring(keyring))
	}
	return fetchOpts, nil
}

// staticDetector reports an already detected host.
type staticDetector struct {
	info *platform.Info
}

func (d staticDetector) Detect(context.Context) (*platform.Info, error) {
	return d.info, nil
}
