package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the download, staging, and version-list caches",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print cache directory sizes",
	RunE:  runCacheInfo,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached downloads",
	RunE:  runCacheList,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove every staging directory; downloads, including partial ones, are kept",
	RunE:  runCachePrune,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove everything under the cache directory",
	RunE:  runCachePurge,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheListCmd, cachePruneCmd, cachePurgeCmd)
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	dirs := map[string]string{
		"downloads": a.paths.DownloadsDir(),
		"staging":   a.paths.StagingDir(),
		"versions":  a.paths.VersionsCacheDir(),
	}
	for _, name := range []string{"downloads", "staging", "versions"} {
		size, count, err := dirStats(dirs[name])
		if err != nil {
			return wrapExit(exitGeneral, err)
		}
		cmd.Printf("%-10s %-50s %8d file(s)  %10d bytes\n", name, dirs[name], count, size)
	}
	return nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}
	entries, err := os.ReadDir(a.paths.DownloadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapExit(exitGeneral, err)
	}
	for _, e := range entries {
		cmd.Println(e.Name())
	}
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}
	entries, err := os.ReadDir(a.paths.StagingDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapExit(exitGeneral, err)
	}
	removed := 0
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(a.paths.StagingDir(), e.Name())); err == nil {
			removed++
		}
	}
	cmd.Printf("removed %d stale staging director(y/ies)\n", removed)
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}
	if err := os.RemoveAll(a.paths.CacheDir()); err != nil {
		return wrapExit(exitGeneral, err)
	}
	cmd.Printf("purged %s\n", a.paths.CacheDir())
	return nil
}

func dirStats(dir string) (size int64, count int, err error) {
	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if os.IsNotExist(err) {
		err = nil
	}
	return size, count, err
}
