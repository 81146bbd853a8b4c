package turn

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/internal/conversation"
	"github.com/nvlabs/deepwatch/internal/registry"
)

func TestDetectFileInInput_FindsExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	got := DetectFileInInput(`please update main.go to add a comment`, dir)
	assert.Equal(t, "main.go", got)
}

func TestDetectFileInInput_NoMatchReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	got := DetectFileInInput("please update missing.go", dir)
	assert.Equal(t, "", got)
}

func TestDetectFileInInput_ResolvesMissingExtensionAgainstCommonExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("a: 1\n"), 0o644))

	got := DetectFileInInput(`edit "config" please`, dir)
	assert.Equal(t, "config.yaml", got)
}

func TestExtractEditInstructions_ParsesOldAndNewCode(t *testing.T) {
	current := "func main() {\n\tfmt.Println(\"hi\")\n}\n"
	response := "OLD_CODE:\n```\nfmt.Println(\"hi\")\n```\n\nNEW_CODE:\n```\nfmt.Println(\"bye\")\n```"

	instr := extractEditInstructions(response, current)
	require.NotNil(t, instr)
	assert.Equal(t, `fmt.Println("hi")`, instr.Old)
	assert.Equal(t, `fmt.Println("bye")`, instr.New)
}

func TestExtractEditInstructions_RejectsOldCodeNotPresentInFile(t *testing.T) {
	current := "func main() {}\n"
	response := "OLD_CODE:\n```\nnot in file\n```\n\nNEW_CODE:\n```\nsomething\n```"

	instr := extractEditInstructions(response, current)
	assert.Nil(t, instr)
}

func TestExtractEditInstructions_MissingMarkersReturnsNil(t *testing.T) {
	instr := extractEditInstructions("I refuse to produce a diff.", "anything")
	assert.Nil(t, instr)
}

type stubEditCaller struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubEditCaller) EditCode(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stubEditCaller: no more responses")
}

func TestHandleCodeEdit_MissingFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	p := &Processor{
		Conversation: conversation.New("sys"),
		Session:      registry.NewSession(dir),
	}
	got := p.HandleCodeEdit(context.Background(), "update missing.go", "missing.go", 3)
	assert.Contains(t, got, "does not exist")
}

func TestHandleCodeEdit_SucceedsOnFirstAttempt(t *testing.T) {
	// tools.EditFile refuses paths outside the home directory, so the
	// fixture lives under it rather than in t.TempDir().
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir, err := os.MkdirTemp(home, "orchestrator-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("func main() {\n\tfmt.Println(\"hi\")\n}\n"), 0o644))

	caller := &stubEditCaller{responses: []string{
		"OLD_CODE:\n```\nfmt.Println(\"hi\")\n```\n\nNEW_CODE:\n```\nfmt.Println(\"bye\")\n```",
	}}

	p := &Processor{
		Conversation: conversation.New("sys"),
		Session:      registry.NewSession(dir),
		Specialists:  nil,
	}
	result := handleCodeEditWith(p, caller, context.Background(), "update main.go to say bye", "main.go", 3)
	assert.Contains(t, result, "Successfully edited main.go")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fmt.Println("bye")`)
}

func TestHandleCodeEdit_RetriesThenFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("func main() {}\n"), 0o644))

	caller := &stubEditCaller{responses: []string{
		"I don't know how to do that.",
		"also not valid",
	}}

	p := &Processor{
		Conversation: conversation.New("sys"),
		Session:      registry.NewSession(dir),
	}
	result := handleCodeEditWith(p, caller, context.Background(), "update main.go", "main.go", 2)
	assert.Contains(t, result, "Failed to edit main.go after 2 attempts")
}
