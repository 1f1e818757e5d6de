// Package installer implements the per-(tool,version,platform) install
// pipeline: lock, hooks, download, verify, extract, atomic publish (spec
// component C7).
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/terassyi/vx/internal/checksum"
	"github.com/terassyi/vx/internal/download"
	"github.com/terassyi/vx/internal/errors"
	"github.com/terassyi/vx/internal/extract"
	"github.com/terassyi/vx/internal/pathmgr"
	"github.com/terassyi/vx/internal/platform"
	"github.com/terassyi/vx/internal/runtime"
)

// lockTimeout bounds how long Install waits to acquire the per-key lock
// before surfacing a CodeInstallLockTimeout error. Another vx process
// installing the same (tool, version, platform) is the expected holder.
const lockTimeout = 5 * time.Minute

// Pipeline installs runtimes into the content-addressed store.
type Pipeline struct {
	paths      *pathmgr.Paths
	downloader download.Downloader
	plat       platform.Platform
}

// New creates a Pipeline rooted at paths, targeting plat.
func New(paths *pathmgr.Paths, plat platform.Platform, opts ...Option) *Pipeline {
	p := &Pipeline{
		paths:      paths,
		downloader: download.NewDownloader(),
		plat:       plat,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDownloader overrides the Downloader (used by tests to inject a fake).
func WithDownloader(d download.Downloader) Option {
	return func(p *Pipeline) { p.downloader = d }
}

// Result describes a successfully installed artifact.
type Result struct {
	Tool           string
	Version        string
	Platform       platform.Platform
	InstallPath    string
	ExecutablePath string
}

// Install runs the full pipeline for rt at version: check store (idempotent),
// acquire the per-key lock, run pre_install, download + verify, extract into
// staging, run post_extract, atomically publish, run post_install, then
// verify the executable exists.
func (p *Pipeline) Install(ctx context.Context, rt runtime.Runtime, version string) (*Result, error) {
	name := rt.Name()
	relExec := rt.ExecutableRelativePath(version, p.plat)
	execPath := p.paths.ExecutablePath(name, version, p.plat, relExec)

	if p.paths.IsVersionInStore(name, version, p.plat, relExec) {
		return &Result{
			Tool:           name,
			Version:        version,
			Platform:       p.plat,
			InstallPath:    p.paths.PlatformStoreDir(name, version, p.plat),
			ExecutablePath: execPath,
		}, nil
	}

	lockPath := p.paths.LockFile(name, version, p.plat)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, errors.NewInstallError(name, "install", err)
	}
	fl := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := fl.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		if ctx.Err() == nil && lockCtx.Err() == context.DeadlineExceeded {
			return nil, errors.NewInstallLockTimeoutError(name, lockPath)
		}
		return nil, errors.NewInstallError(name, "install", err)
	}
	if !locked {
		return nil, errors.NewInstallLockTimeoutError(name, lockPath)
	}
	defer fl.Unlock()

	// Another process may have published this version while we waited.
	if p.paths.IsVersionInStore(name, version, p.plat, relExec) {
		return &Result{
			Tool:           name,
			Version:        version,
			Platform:       p.plat,
			InstallPath:    p.paths.PlatformStoreDir(name, version, p.plat),
			ExecutablePath: execPath,
		}, nil
	}

	finalDir := p.paths.PlatformStoreDir(name, version, p.plat)
	hc := runtime.HookContext{Version: version, Platform: p.plat, InstallPath: finalDir}

	if err := rt.PreInstall(ctx, hc); err != nil {
		return nil, errors.NewHookError(name, "pre_install", err)
	}

	url, ok := rt.DownloadURL(version, p.plat)
	if !ok {
		return nil, errors.NewPlatformError(name, p.plat.AsTag())
	}

	downloadsDir := p.paths.DownloadsDir()
	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		return nil, errors.NewInstallError(name, "install", err)
	}
	archivePath := filepath.Join(downloadsDir, fmt.Sprintf("%s-%s-%s", name, version, p.plat.AsTag()))

	if _, err := p.downloader.Download(ctx, []string{url}, archivePath); err != nil {
		return nil, errors.NewDownloadError(errors.DownloadKindHTTP, url, err)
	}
	defer os.Remove(archivePath)

	var cs *checksum.Checksum
	if sum, ok := rt.Checksum(version, p.plat); ok && sum != "" {
		cs = &checksum.Checksum{Value: sum}
		if strings.Contains(sum, "://") {
			cs = &checksum.Checksum{URL: sum, FilePattern: filepath.Base(url)}
		}
	}
	if err := p.downloader.Verify(ctx, archivePath, cs); err != nil {
		return nil, errors.NewChecksumError(name, url, checksum.ExtractHash(cs), "")
	}

	stageDir := filepath.Join(p.paths.StagingDir(), fmt.Sprintf("%s-%s-%s-%d", name, version, p.plat.AsTag(), time.Now().UnixNano()))
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return nil, errors.NewInstallError(name, "install", err)
	}
	defer os.RemoveAll(stageDir)

	archiveType := extract.DetectArchiveType(url)
	extractor, err := extract.NewExtractor(archiveType)
	if err != nil {
		return nil, errors.NewExtractError(errors.ExtractKindFormat, url, err)
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.NewExtractError(errors.ExtractKindIO, archivePath, err)
	}
	extractErr := extractor.Extract(f, stageDir)
	f.Close()
	if extractErr != nil {
		return nil, errors.NewExtractError(errors.ExtractKindIO, archivePath, extractErr)
	}

	if rt.StripArchiveRoot(version) {
		if err := extract.StripRoot(stageDir); err != nil {
			return nil, errors.NewExtractError(errors.ExtractKindIO, stageDir, err)
		}
	}

	stageHC := runtime.HookContext{Version: version, Platform: p.plat, InstallPath: stageDir}
	if err := rt.PostExtract(ctx, stageHC); err != nil {
		return nil, errors.NewHookError(name, "post_extract", err)
	}

	if err := os.MkdirAll(filepath.Dir(finalDir), 0o755); err != nil {
		return nil, errors.NewInstallError(name, "install", err)
	}
	if err := publish(stageDir, finalDir); err != nil {
		return nil, errors.NewInstallError(name, "install", err)
	}

	if err := rt.PostInstall(ctx, hc); err != nil {
		return nil, errors.NewHookError(name, "post_install", err)
	}

	info, err := os.Stat(execPath)
	if err != nil {
		return nil, errors.NewInstallError(name, "install", fmt.Errorf("executable not found at %s after install: %w", execPath, err))
	}
	if p.plat.OS != platform.OSWindows && info.Mode()&0o111 == 0 {
		return nil, errors.NewInstallError(name, "install", fmt.Errorf("%s is not executable (mode %s) after install", execPath, info.Mode()))
	}

	return &Result{
		Tool:           name,
		Version:        version,
		Platform:       p.plat,
		InstallPath:    finalDir,
		ExecutablePath: execPath,
	}, nil
}

// publish atomically moves stageDir to finalDir. If finalDir already exists
// (a concurrent installer won the race between our lock check and now), the
// staged copy is discarded and the winner's tree is kept untouched.
func publish(stageDir, finalDir string) error {
	if _, err := os.Stat(finalDir); err == nil {
		return nil
	}
	if err := os.Rename(stageDir, finalDir); err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("publishing %s: %w", finalDir, err)
	}
	return nil
}
