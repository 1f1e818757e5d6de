package doctor

import (
	"os"
	"path/filepath"
	"strings"
)

// scanOrphanedLocks walks cache/locks/ for *.lock files whose (tool,
// version, platform) key, encoded in the filename by pathmgr.Paths.LockFile
// as "<tool>-<version>-<platform>.lock", no longer has a corresponding store
// entry. Rather than re-parsing the filename (tool and version may
// themselves contain hyphens, making that ambiguous), it walks the store to
// build the set of filenames LockFile would produce today and reports any
// lock file not in that set.
func (d *Doctor) scanOrphanedLocks() ([]string, error) {
	locksDir := d.paths.LocksDir()
	lockEntries, err := os.ReadDir(locksDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	expected, err := d.expectedLockNames()
	if err != nil {
		return nil, err
	}

	var orphaned []string
	for _, entry := range lockEntries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".lock") {
			continue
		}
		if !expected[name] {
			orphaned = append(orphaned, filepath.Join(locksDir, name))
		}
	}

	return orphaned, nil
}

// expectedLockNames returns the set of lock file basenames that correspond
// to a (tool, version, platform) directory currently present in the store.
func (d *Doctor) expectedLockNames() (map[string]bool, error) {
	storeDir := d.paths.StoreDir()
	toolEntries, err := os.ReadDir(storeDir)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool)
	for _, toolEntry := range toolEntries {
		if !toolEntry.IsDir() {
			continue
		}
		tool := toolEntry.Name()
		toolDir := filepath.Join(storeDir, tool)

		versionEntries, err := os.ReadDir(toolDir)
		if err != nil {
			return nil, err
		}
		for _, versionEntry := range versionEntries {
			if !versionEntry.IsDir() {
				continue
			}
			version := versionEntry.Name()
			versionDir := filepath.Join(toolDir, version)

			platformEntries, err := os.ReadDir(versionDir)
			if err != nil {
				return nil, err
			}
			for _, platformEntry := range platformEntries {
				if !platformEntry.IsDir() {
					continue
				}
				names[tool+"-"+version+"-"+platformEntry.Name()+".lock"] = true
			}
		}
	}

	return names, nil
}
