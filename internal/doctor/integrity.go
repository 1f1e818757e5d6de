package doctor

import (
	"os"
	"path/filepath"
)

// scanEnvSymlinks walks envs/ looking for symlinks whose target no longer
// exists — left behind when a store entry they once pointed at was removed
// (e.g. by a manual `rm -rf` under store/ or a pruned version) without the
// environment being regenerated.
func (d *Doctor) scanEnvSymlinks() ([]SymlinkIssue, error) {
	envsDir := d.paths.EnvsDir()

	var issues []SymlinkIssue
	err := filepath.WalkDir(envsDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == envsDir {
				return nil
			}
			return err
		}
		if entry.Type()&os.ModeSymlink == 0 {
			return nil
		}

		target, err := os.Readlink(path)
		if err != nil {
			issues = append(issues, SymlinkIssue{Path: path})
			return nil
		}

		resolved := target
		if !filepath.IsAbs(target) {
			resolved = filepath.Join(filepath.Dir(path), target)
		}
		if _, statErr := os.Stat(resolved); os.IsNotExist(statErr) {
			issues = append(issues, SymlinkIssue{Path: path, Target: target})
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return issues, nil
}
