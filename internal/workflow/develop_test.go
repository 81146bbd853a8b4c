package workflow

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevelopExecute_NotAGitRepositoryReturnsError(t *testing.T) {
	d := &Develop{WorkingDir: t.TempDir()}

	got := d.Execute(context.Background(), "add a health check endpoint")

	assert.Contains(t, got, "Not a git repository")
	assert.Contains(t, got, "git init")
}

func TestDevelopExecute_NoSpecialistsConfiguredReturnsError(t *testing.T) {
	dir := initGitRepo(t)
	d := &Develop{WorkingDir: dir}

	got := d.Execute(context.Background(), "add a health check endpoint")

	assert.Equal(t, "Error: no coding specialist configured.", got)
}

func TestDevelopHasUncommittedChanges_DetectsUntrackedFile(t *testing.T) {
	dir := initGitRepo(t)
	d := &Develop{WorkingDir: dir}

	assert.False(t, d.hasUncommittedChanges())

	writeFile(t, dir, "README.md", "hello")

	assert.True(t, d.hasUncommittedChanges())
}

func TestFormatDevelopSummary_WrapsPlanWithNextSteps(t *testing.T) {
	got := formatDevelopSummary("plan: add the endpoint\nimplementation: done")

	assert.Contains(t, got, "DEVELOPMENT COMPLETE")
	assert.Contains(t, got, "plan: add the endpoint")
	assert.Contains(t, got, "git commit -m")
}

func initGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
