// Package tools implements the built-in file, shell, and image tools
// registered into internal/registry. Path handling is centralized into a
// single validatePath shared by every file tool: absolute resolution,
// symlink evaluation, and a home-directory containment check, in place of a
// simpler "..."-substring rejection, which a relative path like
// "a/../../etc" could still slip past.
package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
)

// MaxFileSize caps any single file tool read/write at 10 MB.
const MaxFileSize = 10 * 1024 * 1024

// validatePath resolves path (relative to cwd when not absolute), evaluates
// symlinks, and refuses anything that escapes the user's home directory.
func validatePath(cwd, path string) (string, error) {
	if path == "" {
		return "", &errs.InvalidArgumentError{Reason: "path cannot be empty"}
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, abs)
	}
	abs = filepath.Clean(abs)

	home, err := os.UserHomeDir()
	if err != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot determine home directory: " + err.Error()}
	}
	home = filepath.Clean(home)

	resolved := abs
	if evaluated, evalErr := filepath.EvalSymlinks(abs); evalErr == nil {
		resolved = evaluated
	}
	// A not-yet-existing path (e.g. write_file's target) has no symlink to
	// evaluate; fall back to checking the parent directory instead.
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		if parentResolved, evalErr := filepath.EvalSymlinks(filepath.Dir(abs)); evalErr == nil {
			resolved = filepath.Join(parentResolved, filepath.Base(abs))
		}
	}

	if resolved != home && !strings.HasPrefix(resolved, home+string(filepath.Separator)) {
		return "", &errs.InvalidArgumentError{Reason: "path escapes home directory: " + path}
	}

	return abs, nil
}
