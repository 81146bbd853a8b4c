package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/internal/registry"
)

func testSession(t *testing.T) (*registry.Session, string) {
	t.Helper()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir, err := os.MkdirTemp(home, "orchestrator-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return registry.NewSession(dir), dir
}

func TestWriteReadEditFile(t *testing.T) {
	session, dir := testSession(t)
	path := filepath.Join(dir, "note.txt")

	_, err := WriteFile(session, map[string]interface{}{"file_path": path, "content": "hello world"})
	require.NoError(t, err)

	content, err := ReadFile(session, map[string]interface{}{"file_path": path})
	require.NoError(t, err)
	assert.Equal(t, "hello world", content)

	_, err = EditFile(session, map[string]interface{}{
		"file_path": path,
		"old_code":  "world",
		"new_code":  "go",
	})
	require.NoError(t, err)

	content, err = ReadFile(session, map[string]interface{}{"file_path": path})
	require.NoError(t, err)
	assert.Equal(t, "hello go", content)
}

func TestEditFile_NotFound(t *testing.T) {
	session, dir := testSession(t)
	path := filepath.Join(dir, "note.txt")
	_, err := WriteFile(session, map[string]interface{}{"file_path": path, "content": "hello world"})
	require.NoError(t, err)

	_, err = EditFile(session, map[string]interface{}{
		"file_path": path,
		"old_code":  "goodbye",
		"new_code":  "hi",
	})
	require.Error(t, err)
}

func TestValidatePath_EscapesHome(t *testing.T) {
	_, dir := testSession(t)
	_ = dir
	home, _ := os.UserHomeDir()
	_, err := validatePath(home, "/etc/passwd")
	require.Error(t, err)
}

func TestRunShell_RejectsBannedVerb(t *testing.T) {
	session, _ := testSession(t)
	_, err := RunShell(session, map[string]interface{}{"command": "rm -rf /"})
	require.Error(t, err)
}

func TestRunShell_RejectsUnlistedVerb(t *testing.T) {
	session, _ := testSession(t)
	_, err := RunShell(session, map[string]interface{}{"command": "curl http://example.com"})
	require.Error(t, err)
}

func TestRunShell_AllowsWhitelisted(t *testing.T) {
	session, _ := testSession(t)
	out, err := RunShell(session, map[string]interface{}{"command": "echo hi"})
	require.NoError(t, err)
	assert.Contains(t, out, "hi")
}
