package doctor

import (
	"io/fs"
	"os"
	"path/filepath"
)

// scanStoreEntries walks store/<tool>/<version>/<platform> and flags
// platform directories that exist but are empty — the signature of an
// install that was interrupted after staging but before (or during)
// publish, or a stage directory left behind by a crash before rename.
func (d *Doctor) scanStoreEntries() ([]StoreIssue, error) {
	storeDir := d.paths.StoreDir()
	toolEntries, err := os.ReadDir(storeDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var issues []StoreIssue
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
				platformTag := platformEntry.Name()
				platformDir := filepath.Join(versionDir, platformTag)

				empty, err := isEmptyDir(platformDir)
				if err != nil {
					return nil, err
				}
				if empty {
					issues = append(issues, StoreIssue{
						Tool:     tool,
						Version:  version,
						Platform: platformTag,
						Path:     platformDir,
					})
				}
			}
		}
	}

	return issues, nil
}

// isEmptyDir reports whether dir contains no regular files anywhere beneath
// it. A directory holding only empty subdirectories is still considered
// empty: nothing a runtime would ever execute lives there.
func isEmptyDir(dir string) (bool, error) {
	foundFile := false
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			foundFile = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return !foundFile, nil
}
