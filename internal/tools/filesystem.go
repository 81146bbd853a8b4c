package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/registry"
)

func argString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func argBool(args map[string]interface{}, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// ReadFile reads a file's contents, optionally prefixing each line with its
// 1-based line number when with_line_numbers is true.
func ReadFile(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "file_path")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "read_file requires file_path"}
	}
	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot stat file: " + err.Error()}
	}
	if info.Size() > MaxFileSize {
		return "", &errs.InvalidArgumentError{Reason: fmt.Sprintf("file exceeds %d byte cap", MaxFileSize)}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot read file: " + err.Error()}
	}
	session.MarkRead(abs)

	content := string(data)
	if argBool(args, "with_line_numbers") {
		lines := strings.Split(content, "\n")
		var b strings.Builder
		for i, line := range lines {
			fmt.Fprintf(&b, "%4d\t%s\n", i+1, line)
		}
		content = b.String()
	}
	return content, nil
}

// WriteFile overwrites (or creates) a file, creating parent directories as
// needed.
func WriteFile(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "file_path")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "write_file requires file_path"}
	}
	content, _ := argString(args, "content")
	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}
	if len(content) > MaxFileSize {
		return "", &errs.InvalidArgumentError{Reason: fmt.Sprintf("content exceeds %d byte cap", MaxFileSize)}
	}

	if mkErr := os.MkdirAll(filepath.Dir(abs), 0o755); mkErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot create parent directory: " + mkErr.Error()}
	}
	if writeErr := os.WriteFile(abs, []byte(content), 0o644); writeErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot write file: " + writeErr.Error()}
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), abs), nil
}

// EditFile performs an exact-match replace of old_code with new_code.
// read-before-edit is enforced by the dispatcher, not here. When old_code
// isn't found verbatim, a whitespace-normalized near-miss search locates the
// closest matching region and reports it so the caller can retry with a
// corrected OLD_CODE block, per the turn processor's retry loop.
func EditFile(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "file_path")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "edit_file requires file_path"}
	}
	oldCode, _ := argString(args, "old_code")
	newCode, _ := argString(args, "new_code")
	replaceAll := argBool(args, "replace_all")

	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot read file: " + err.Error()}
	}
	content := string(data)

	count := strings.Count(content, oldCode)
	if count == 0 {
		if near, found := findNearMiss(content, oldCode); found {
			return "", &errs.InvalidArgumentError{Reason: "old_code not found verbatim; closest match:\n" + near}
		}
		return "", &errs.InvalidArgumentError{Reason: "old_code not found in file"}
	}
	if count > 1 && !replaceAllRequired(replaceAll, count) {
		return "", &errs.InvalidArgumentError{Reason: fmt.Sprintf("old_code matches %d locations; pass replace_all=true or narrow the match", count)}
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(content, oldCode, newCode)
	} else {
		updated = strings.Replace(content, oldCode, newCode, 1)
	}

	if writeErr := os.WriteFile(abs, []byte(updated), 0o644); writeErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot write file: " + writeErr.Error()}
	}
	return fmt.Sprintf("edited %s (%d replacement(s))", abs, count), nil
}

func replaceAllRequired(replaceAll bool, count int) bool {
	return replaceAll || count == 1
}

// findNearMiss looks for the window of content whose whitespace-normalized
// form best matches needle's whitespace-normalized form, returning the
// original (non-normalized) text of that window.
func findNearMiss(content, needle string) (string, bool) {
	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	normNeedle := normalize(needle)
	if normNeedle == "" {
		return "", false
	}

	lines := strings.Split(content, "\n")
	needleLines := strings.Count(needle, "\n") + 1

	bestScore := -1
	bestWindow := ""
	for i := 0; i+needleLines <= len(lines); i++ {
		window := strings.Join(lines[i:i+needleLines], "\n")
		normWindow := normalize(window)
		score := commonPrefixSuffixScore(normWindow, normNeedle)
		if score > bestScore {
			bestScore = score
			bestWindow = window
		}
	}
	if bestWindow == "" || bestScore <= 0 {
		return "", false
	}
	return bestWindow, true
}

// commonPrefixSuffixScore is a cheap similarity heuristic: length of the
// longest common prefix plus longest common suffix between a and b.
func commonPrefixSuffixScore(a, b string) int {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	return prefix + suffix
}

// Mkdir creates a directory and any missing parents.
func Mkdir(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "path")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "mkdir requires path"}
	}
	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}
	if mkErr := os.MkdirAll(abs, 0o755); mkErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot create directory: " + mkErr.Error()}
	}
	return "created " + abs, nil
}

// ListDirectory lists immediate entries of a directory, directories first.
func ListDirectory(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "path")
	if !ok {
		rawPath = session.Cwd()
	}
	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}

	entries, readErr := os.ReadDir(abs)
	if readErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot list directory: " + readErr.Error()}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	var b strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintf(&b, "%s/\n", e.Name())
		} else {
			fmt.Fprintf(&b, "%s\n", e.Name())
		}
	}
	return b.String(), nil
}

// GetWorkingDirectory reports the session's tracked cwd (the `pwd` alias
// target).
func GetWorkingDirectory(session *registry.Session, args map[string]interface{}) (string, error) {
	return session.Cwd(), nil
}
